package domain

import "time"

// Node is a named, typed system artifact: a database, an application, an API,
// a report. Audit fields and Version are owned by the store.
type Node struct {
	ID          int64
	Name        string
	Type        string
	Description *string
	Properties  *string // JSON object or array text
	CreateTime  time.Time
	UpdateTime  time.Time
	CreateBy    string
	UpdateBy    string
	Deleted     bool
	Version     int // optimistic-lock token
}

// Clone returns a deep copy of n, so a caller can hold a snapshot while the
// original is refreshed by the store.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Description = cloneStr(n.Description)
	c.Properties = cloneStr(n.Properties)
	return &c
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
