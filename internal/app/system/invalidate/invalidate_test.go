package invalidate_test

import (
	"context"
	"testing"

	"github.com/dalemusser/mahallehub/internal/app/system/invalidate"
	"github.com/stretchr/testify/assert"
)

type counter struct{ n int }

func (c *counter) Invalidate() { c.n++ }

func TestLocal_DropsEveryTarget(t *testing.T) {
	a, b := &counter{}, &counter{}
	n := invalidate.NewLocal(nil, a, b)

	n.CitizensChanged(context.Background(), "import")
	n.CitizensChanged(context.Background(), "edit")

	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}

func TestNilLocalAndNop(t *testing.T) {
	var l *invalidate.Local
	l.CitizensChanged(context.Background(), "x")
	invalidate.Nop{}.CitizensChanged(context.Background(), "x")
}
