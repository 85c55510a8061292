package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/nodestore/internal/domain"
)

// FormatNode renders a single node as a detail box.
func FormatNode(n *domain.Node, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s  %s\n\n", Bold(n.Name), TypeBadge(n.Type), VersionBadge(n.Version)))
	b.WriteString(fmt.Sprintf("  %s  %d\n", Dim("ID     "), n.ID))
	if desc := domain.StrOrEmpty(n.Description); desc != "" {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("DESC   "), desc))
	}
	b.WriteString(fmt.Sprintf("  %s  %s %s\n", Dim("CREATED"), Timestamp(n.CreateTime), Dim("by "+n.CreateBy)))
	b.WriteString(fmt.Sprintf("  %s  %s %s %s\n", Dim("UPDATED"), Timestamp(n.UpdateTime),
		Dim("by "+n.UpdateBy), Dim("("+HumanTimestamp(n.UpdateTime, now)+")")))

	if props := domain.StrOrEmpty(n.Properties); strings.TrimSpace(props) != "" {
		b.WriteString("\n")
		b.WriteString(Header("Properties"))
		b.WriteString("\n")
		b.WriteString(PrettyJSON(props))
		b.WriteString("\n")
	}

	return RenderBox("Node", b.String())
}

var nodeTableHeaders = []string{"ID", "NAME", "TYPE", "VER", "UPDATED", "BY"}

// FormatNodeTable renders nodes as a table, or a dim placeholder when empty.
func FormatNodeTable(nodes []*domain.Node, now time.Time) string {
	if len(nodes) == 0 {
		return Dim("No nodes found.") + "\n"
	}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Name,
			TypeBadge(n.Type),
			strconv.Itoa(n.Version),
			HumanTimestamp(n.UpdateTime, now),
			domain.CoalesceStr(n.UpdateBy, n.CreateBy),
		})
	}
	return RenderTable(nodeTableHeaders, rows)
}

// PageFooter summarises the position of a page, e.g. "page 2/5 · 23 nodes".
func PageFooter[T any](p domain.PageResult[T]) string {
	noun := "nodes"
	if p.Total == 1 {
		noun = "node"
	}
	return Dim(fmt.Sprintf("page %d/%d · %d %s", p.Current, p.Pages, p.Total, noun))
}

// FormatPage renders a page of nodes with its footer.
func FormatPage(p domain.PageResult[*domain.Node], now time.Time) string {
	return FormatNodeTable(p.Records, now) + PageFooter(p) + "\n"
}
