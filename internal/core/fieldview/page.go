package fieldview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Page is a backend list response carrying field-level authorization.
// Every field is optional.
type Page struct {
	Content          []Record `json:"content"`
	TotalElements    int64    `json:"totalElements"`
	TotalPages       int      `json:"totalPages"`
	Size             int      `json:"size"`
	Number           int      `json:"number"`
	NumberOfElements int      `json:"numberOfElements"`
	AllowedActions   []string `json:"allowedActions"`
	First            bool     `json:"first"`
	Last             bool     `json:"last"`
	Empty            bool     `json:"empty"`
}

// DecodePage parses a backend list response. A bare JSON array is accepted
// as a single unpaged page.
func DecodePage(raw []byte) (*Page, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &Page{Empty: true, First: true, Last: true}, nil
	}

	if raw[0] == '[' {
		var content []Record
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		n := len(content)
		return &Page{
			Content:          content,
			TotalElements:    int64(n),
			TotalPages:       1,
			Size:             n,
			NumberOfElements: n,
			First:            true,
			Last:             true,
			Empty:            n == 0,
		}, nil
	}

	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if p.NumberOfElements == 0 {
		p.NumberOfElements = len(p.Content)
	}
	if len(p.Content) == 0 {
		p.Empty = true
	}
	return &p, nil
}

// Actions is the set of record actions the backend allows the caller.
type Actions struct {
	allowed map[string]bool
	list    []string
}

// NewActions normalises allowedActions to lowercase.
func NewActions(allowedActions []string) Actions {
	a := Actions{allowed: make(map[string]bool, len(allowedActions))}
	for _, action := range allowedActions {
		action = strings.ToLower(strings.TrimSpace(action))
		if action == "" || a.allowed[action] {
			continue
		}
		a.allowed[action] = true
		a.list = append(a.list, action)
	}
	return a
}

// CanPerform reports whether action is allowed.
func (a Actions) CanPerform(action string) bool {
	return a.allowed[strings.ToLower(action)]
}

func (a Actions) CanRead() bool { return a.CanPerform("read") }
func (a Actions) CanCreate() bool { return a.CanPerform("create") }
func (a Actions) CanUpdate() bool { return a.CanPerform("update") }
func (a Actions) CanDelete() bool { return a.CanPerform("delete") }
func (a Actions) CanSubmit() bool { return a.CanPerform("submit") }
func (a Actions) CanApprove() bool { return a.CanPerform("approve") }
func (a Actions) CanReject() bool { return a.CanPerform("reject") }

// List returns the allowed actions in first-seen order.
func (a Actions) List() []string {
	return append([]string(nil), a.list...)
}

// Column declares one rendered field of a record view.
type Column struct {
	Field string    `json:"field"`
	Label string    `json:"label"`
	Type  ValueType `json:"type"`
}

// Cell is a rendered field. Visible is false when the backend redacted it.
type Cell struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Visible bool   `json:"visible"`
	Badge   string `json:"badge,omitempty"`
}

// Row is one rendered record.
type Row struct {
	Cells []Cell `json:"cells"`
}

// RenderedPage is a page ready for display.
type RenderedPage struct {
	Columns        []Column `json:"columns"`
	Rows           []Row    `json:"rows"`
	AllowedActions []string `json:"allowedActions"`
	TotalElements  int64    `json:"totalElements"`
	TotalPages     int      `json:"totalPages"`
	Page           int      `json:"page"`
	Size           int      `json:"size"`
	Empty          bool     `json:"empty"`
}

// RenderCell formats one field of rec as declared by col.
func RenderCell(rec Record, col Column) Cell {
	cell := Cell{
		Field:   col.Field,
		Visible: IsFieldVisible(rec, col.Field),
		Value:   DisplayValue(rec, col.Field, Options{Type: col.Type}),
	}
	if col.Type == TypeBadge && cell.Visible {
		cell.Badge = StatusBadgeClass(cell.Value)
	}
	return cell
}

// RenderPage renders every record of p against columns. Columns are kept
// even when every record lacks the field.
func RenderPage(p *Page, columns []Column) *RenderedPage {
	out := &RenderedPage{
		Columns:        columns,
		Rows:           make([]Row, 0, len(p.Content)),
		AllowedActions: NewActions(p.AllowedActions).List(),
		TotalElements:  p.TotalElements,
		TotalPages:     p.TotalPages,
		Page:           p.Number,
		Size:           p.Size,
		Empty:          p.Empty,
	}
	for _, rec := range p.Content {
		row := Row{Cells: make([]Cell, len(columns))}
		for i, col := range columns {
			row.Cells[i] = RenderCell(rec, col)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
