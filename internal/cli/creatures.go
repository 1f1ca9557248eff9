package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/internal/catalog"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// withCatalog attaches the store, runs fn with a catalog service, and detaches.
func (a *app) withCatalog(fn func(svc *catalog.Service) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Detach()
	return fn(catalog.New(store, catalog.WithLogger(a.logger)))
}

func newListCmd(a *app) *cobra.Command {
	var typeFilter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List creatures ordered by pokedex number",
		Long: `List prints every creature in the catalog.

Example:
  dexhub list
  dexhub list --type fire
  dexhub list --json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tag types.TypeTag
			if typeFilter != "" {
				t, ok := types.ParseTag(typeFilter)
				if !ok {
					return fmt.Errorf("%w: %q", types.ErrUnknownType, typeFilter)
				}
				tag = t
			}

			return a.withCatalog(func(svc *catalog.Service) error {
				all, err := svc.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				if tag != "" {
					filtered := all[:0]
					for _, c := range all {
						if c.HasType(tag) {
							filtered = append(filtered, c)
						}
					}
					all = filtered
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), all)
				}
				printCreatureTable(cmd.OutOrStdout(), all)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typeFilter, "type", "", "only list creatures with this type")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a creature",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return a.withCatalog(func(svc *catalog.Service) error {
				c, err := svc.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				printCreature(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		name     string
		typeList string
		imageURL string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a creature's name, types, and image",
		Long: `Update reads the creature, applies the given fields, and saves it with a
version check. Fields not given keep their stored values. The command fails if
another writer changed the creature in between; re-run it to retry.

Example:
  dexhub update 1 --name Ivysaur --types grass,poison`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("types") && !flags.Changed("image") {
				return fmt.Errorf("%w: at least one of --name, --types, or --image must be provided", errUsage)
			}

			return a.withCatalog(func(svc *catalog.Service) error {
				current, err := svc.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				proposed := *current.Clone()
				if flags.Changed("name") {
					proposed.Name = name
				}
				if flags.Changed("types") {
					tags, err := types.ParseTags(splitList(typeList))
					if err != nil {
						return err
					}
					proposed.Types = tags
				}
				if flags.Changed("image") {
					proposed.Image.URL = imageURL
				}

				updated, err := svc.Update(cmd.Context(), id, proposed)
				if err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d (version %d)\n", updated.ID, updated.Version)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&typeList, "types", "", "comma-separated types, e.g. grass,poison")
	cmd.Flags().StringVar(&imageURL, "image", "", "new image URL")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a creature with its types and image",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return a.withCatalog(func(svc *catalog.Service) error {
				if err := svc.Delete(cmd.Context(), id); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "deleted": true})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
				return nil
			})
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
