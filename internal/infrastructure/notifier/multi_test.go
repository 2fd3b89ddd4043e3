package notifier

import (
	"context"
	"errors"
	"testing"

	"ideation-orchestrator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

type recording struct {
	name string
	err  error
	got  []string
}

func (r *recording) Name() string { return r.name }

func (r *recording) Notify(ctx context.Context, n entity.Notification) error {
	r.got = append(r.got, n.Text)
	return r.err
}

func TestMulti(t *testing.T) {
	a := &recording{name: "slack"}
	b := &recording{name: "telegram", err: errors.New("chat not found")}
	m := Multi{a, b}

	err := m.Notify(context.Background(), entity.Notification{Text: "hello"})
	assert.EqualError(t, err, "telegram: chat not found")
	assert.Equal(t, []string{"hello"}, a.got)
	assert.Equal(t, []string{"hello"}, b.got)
	assert.Equal(t, "slack+telegram", m.Name())

	assert.NoError(t, Multi{a}.Notify(context.Background(), entity.Notification{Text: "x"}))
}
