package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/spf13/pflag"
)

// pageFlags collects the paging and filter flags shared by page and browse.
type pageFlags struct {
	page     int
	size     int
	nameLike string
	typ      string
}

func addFilterFlags(fs *pflag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.nameLike, "name", "", "Only nodes whose name contains this text")
	fs.StringVar(&f.typ, "type", "", "Only nodes of this type")
}

func addPageFlags(fs *pflag.FlagSet, f *pageFlags) {
	fs.IntVar(&f.page, "page", 1, "Page number (1-based)")
	fs.IntVarP(&f.size, "size", "s", 0, "Page size (default from config)")
	addFilterFlags(fs, f)
}

func (f pageFlags) query(defaultSize int) repository.PageQuery {
	size := f.size
	if size == 0 {
		size = defaultSize
	}
	return repository.PageQuery{
		Page:     f.page,
		Size:     size,
		NameLike: f.nameLike,
		Type:     f.typ,
	}
}

// nodeFields holds the editable node fields as flags.
type nodeFields struct {
	name        string
	typ         string
	description string
	properties  string
}

func addNodeFieldFlags(fs *pflag.FlagSet, f *nodeFields) {
	fs.StringVar(&f.name, "name", "", "Node name (unique among live nodes)")
	fs.StringVar(&f.typ, "type", "", "Node type, e.g. database, application, api, report")
	fs.StringVar(&f.description, "description", "", "Free-text description")
	fs.StringVar(&f.properties, "properties", "", "JSON object or array")
}

// changedString returns a pointer to val when the flag was set, nil otherwise.
func changedString(fs *pflag.FlagSet, name, val string) *string {
	if !fs.Changed(name) {
		return nil
	}
	return &val
}

// updatableFlags are the update flags that change a node.
var updatableFlags = []string{"name", "type", "description", "properties", "clear-description", "clear-properties"}

func anyChanged(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, &repository.Error{Kind: repository.KindValidation, Op: "parse id",
			Msg: fmt.Sprintf("%q is not a node id", arg)}
	}
	return id, nil
}
