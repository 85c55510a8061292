package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/nodestore/internal/cli/formatter"
	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/spf13/cobra"
)

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeGetCmd(app),
		newNodeFindCmd(app),
		newNodeListCmd(app),
		newNodePageCmd(app),
		newNodeUpdateCmd(app),
		newNodeDeleteCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var fields nodeFields
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !app.interactive() {
					return errors.New("--interactive needs a terminal")
				}
				if err := app.runForm(nodeForm(&fields)); err != nil {
					return fmt.Errorf("node form: %w", err)
				}
			}

			n := &domain.Node{
				Name:        fields.name,
				Type:        fields.typ,
				Description: domain.StrPtr(fields.description),
				Properties:  domain.StrPtr(fields.properties),
			}
			if err := app.Nodes.Create(context.Background(), n, app.Operator); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created node %s (%d)", n.Name, n.ID)))
			return nil
		},
	}

	addNodeFieldFlags(cmd.Flags(), &fields)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the fields with a form")

	return cmd
}

func newNodeGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a node by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := app.Nodes.GetByID(context.Background(), id)
			if err != nil {
				return err
			}
			if n == nil {
				return notFound("get node", fmt.Sprintf("node %d", id))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNode(n, app.now()))
			return nil
		},
	}
}

func newNodeFindCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Show a node by exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Nodes.GetByName(context.Background(), args[0])
			if err != nil {
				return err
			}
			if n == nil {
				return notFound("find node", fmt.Sprintf("no node named %q", args[0]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNode(n, app.now()))
			return nil
		},
	}
}

func newNodeListCmd(app *App) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes of a type, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := app.Nodes.ListByType(context.Background(), typ)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodeTable(nodes, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Node type")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newNodePageCmd(app *App) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Show one page of nodes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.Nodes.Page(context.Background(), pf.query(app.DefaultPageSize))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPage(page, app.now()))
			return nil
		},
	}

	addPageFlags(cmd.Flags(), &pf)

	return cmd
}

func newNodeUpdateCmd(app *App) *cobra.Command {
	var fields nodeFields
	var version, retries int
	var clearDescription, clearProperties bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a node's fields",
		Long: `Change a node's fields.

With --version the update only applies if the node is still at that version;
otherwise it fails with a conflict. Without --version the node is re-read and
the change retried up to --retries times when another writer gets in first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			apply := func(n *domain.Node) error {
				if !anyChanged(fs, updatableFlags...) {
					return &repository.Error{Kind: repository.KindValidation, Op: "update node",
						Msg: "nothing to change; pass at least one field flag"}
				}
				if v := changedString(fs, "name", fields.name); v != nil {
					n.Name = *v
				}
				if v := changedString(fs, "type", fields.typ); v != nil {
					n.Type = *v
				}
				if v := changedString(fs, "description", fields.description); v != nil {
					n.Description = v
				}
				if v := changedString(fs, "properties", fields.properties); v != nil {
					n.Properties = v
				}
				if clearDescription {
					n.Description = nil
				}
				if clearProperties {
					n.Properties = nil
				}
				return nil
			}

			var updated *domain.Node
			if fs.Changed("version") {
				n, err := app.Nodes.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if n == nil {
					return notFound("update node", fmt.Sprintf("node %d", id))
				}
				n.Version = version
				if err := apply(n); err != nil {
					return err
				}
				if err := app.Nodes.Update(ctx, n, app.Operator); err != nil {
					return err
				}
				updated = n
			} else {
				updated, err = app.Nodes.UpdateWithRetry(ctx, id, app.Operator, retries+1, apply)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(
				fmt.Sprintf("Updated node %s (%d) to %s", updated.Name, updated.ID, formatter.VersionBadge(updated.Version))))
			return nil
		},
	}

	addNodeFieldFlags(cmd.Flags(), &fields)
	cmd.Flags().IntVar(&version, "version", 0, "Expected current version (optimistic lock)")
	cmd.Flags().IntVar(&retries, "retries", 2, "Conflict retries when --version is not given")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "Remove the description")
	cmd.Flags().BoolVar(&clearProperties, "clear-properties", false, "Remove the properties")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("properties", "clear-properties")
	cmd.MarkFlagsMutuallyExclusive("version", "retries")

	return cmd
}

func newNodeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Soft-delete a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Nodes.Delete(context.Background(), id, app.Operator); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Deleted node %d", id)))
			return nil
		},
	}
}
