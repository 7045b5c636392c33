package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qrkot/internal/domain"
)

func TestPrintProjects(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closedAt := created.Add(48 * time.Hour)

	open := domain.Project{Allocatable: domain.NewAllocatable("p-open", 100, created), Name: "Food"}
	open.AllocatedAmount = 30
	done := domain.Project{Allocatable: domain.NewAllocatable("p-done", 50, created), Name: "Toys"}
	done.AllocatedAmount = 50
	done.Closed = true
	done.ClosedAt = &closedAt

	var buf bytes.Buffer
	printProjects(&buf, []domain.Project{open, done}, false)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 3) {
		assert.Equal(t, []string{"p-open", "Food", "100", "30", "70", "-"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"p-done", "Toys", "50", "50", "0", "2024-01-03"}, strings.Fields(lines[2]))
	}

	buf.Reset()
	printProjects(&buf, []domain.Project{open, done}, true)
	assert.NotContains(t, buf.String(), "p-done")
}
