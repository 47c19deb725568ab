package apiclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJar_StoreAndExpire(t *testing.T) {
	j := NewJar(&http.Cookie{Name: "a", Value: "1"}, &http.Cookie{Name: "empty"}, nil)

	assert.Equal(t, "1", j.Get("a"))
	assert.Equal(t, "", j.Get("empty"))
	assert.Empty(t, j.Changes())

	j.Store(&http.Cookie{Name: "b", Value: "2", MaxAge: 60})
	assert.Equal(t, "2", j.Get("b"))

	j.Store(&http.Cookie{Name: "a", Value: "gone", Expires: time.Now().Add(-time.Hour)})
	assert.Equal(t, "", j.Get("a"))

	names := map[string]bool{}
	for _, c := range j.Changes() {
		names[c.Name] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, names)
}

func TestJar_Clear(t *testing.T) {
	j := NewJar(&http.Cookie{Name: "access", Value: "x"})
	j.Clear("access", "refresh")

	assert.Equal(t, "", j.Get("access"))
	assert.Len(t, j.Changes(), 2)
	for _, c := range j.Changes() {
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestJarFromContext(t *testing.T) {
	assert.Nil(t, JarFromContext(context.Background()))
	j := NewJar()
	assert.Same(t, j, JarFromContext(WithJar(context.Background(), j)))
}
