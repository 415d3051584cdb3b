package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageClamps(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Size: 50}, NewPage(3, 50))
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(-2, MaxPageSize+1))
}

func TestPageOffsetAndTotals(t *testing.T) {
	p := NewPage(3, 10)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
}
