// Package project reads and writes project.toml files, the plain-text form of
// a project's task set.
package project

import (
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// File is parsed from a project.toml.
type File struct {
	Project Info       `toml:"project"`
	Tasks   []TaskSpec `toml:"tasks"`

	Path string `toml:"-"` // source path for error context
}

// Info holds the project's name and description.
type Info struct {
	Name        string `toml:"name"`
	Description string `toml:"description,omitempty"`
}

// TaskSpec is one [[tasks]] entry. Dates are calendar days without a time
// of day.
type TaskSpec struct {
	ID             string          `toml:"id"`
	Title          string          `toml:"title"`
	Start          toml.LocalDate  `toml:"start"`
	End            toml.LocalDate  `toml:"end"`
	Completed      *toml.LocalDate `toml:"completed,omitempty"`
	Status         string          `toml:"status,omitempty"`
	Priority       string          `toml:"priority,omitempty"`
	Progress       int             `toml:"progress,omitempty"`
	EstimatedHours float64         `toml:"estimated_hours,omitempty"`
	Parent         string          `toml:"parent,omitempty"`
	DependsOn      []string        `toml:"depends_on,omitempty"`
}

// Date converts a LocalDate into a UTC midnight time.
func Date(d toml.LocalDate) time.Time {
	return d.AsTime(time.UTC)
}

// LocalDate converts t into the calendar day it falls on in UTC.
func LocalDate(t time.Time) toml.LocalDate {
	u := t.UTC()
	return toml.LocalDate{Year: u.Year(), Month: int(u.Month()), Day: u.Day()}
}

func isZero(d toml.LocalDate) bool {
	return d == toml.LocalDate{}
}
