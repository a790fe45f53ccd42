package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/http/jwt"
)

func tokenCmd() *cobra.Command {
	var (
		secret   string
		operator string
		issuer   string
		expire   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an admin token with the server secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := jwt.GenToken(operator, issuer, []byte(secret), expire)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("ONEUPDATE_HTTP_AUTH_SECRETKEY"), "http.auth.secretKey of the server")
	cmd.Flags().StringVar(&operator, "operator", "admin", "operator recorded in the token")
	cmd.Flags().StringVar(&issuer, "issuer", "oneupdate", "token issuer")
	cmd.Flags().DurationVar(&expire, "expire", 12*time.Hour, "token lifetime")

	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the token passed with --token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd.OutOrStdout(), "POST", "/auth/revoke", nil)
		},
	}
	cmd.AddCommand(revoke)
	return cmd
}

func fleetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Inspect plugins across brand sites",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "plugins",
		Short: "Print the merged plugin map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd.OutOrStdout(), "GET", "/fleet/plugins", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "run <ticket>",
		Short: "Resolve the workflow run of a dispatch ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd.OutOrStdout(), "GET", "/fleet/runs/"+args[0], nil)
		},
	})
	return cmd
}

func actionCmd() *cobra.Command {
	var (
		sites      []string
		version    string
		pluginType string
		preview    bool
	)
	cmd := &cobra.Command{
		Use:   "action <activate|deactivate|update|install|change-version|remove> <slug>",
		Short: "Run a plugin action on brand sites",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := model.Operation(args[0])
			if !op.Valid() {
				return fmt.Errorf("unknown action %q", args[0])
			}
			if preview {
				return call(cmd.OutOrStdout(), "POST", "/fleet/actions/resolve", map[string]any{
					"action": op,
					"slug":   args[1],
				})
			}
			return call(cmd.OutOrStdout(), "POST", "/fleet/actions", model.ActionRequest{
				Action:     op,
				Slug:       args[1],
				Sites:      sites,
				Version:    version,
				PluginType: pluginType,
			})
		},
	}
	cmd.Flags().StringSliceVar(&sites, "site", nil, "target site url, repeatable")
	cmd.Flags().StringVar(&version, "version", "", "plugin version, defaults to the latest stable one")
	cmd.Flags().StringVar(&pluginType, "type", "", "public or private")
	cmd.Flags().BoolVar(&preview, "preview", false, "only show eligible targets and versions")
	return cmd
}

func sitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage the brand site registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List brand sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd.OutOrStdout(), "GET", "/settings/shared-sites", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <name=url[,repo]>...",
		Short: "Replace the registry with the given sites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := parseSites(args)
			if err != nil {
				return err
			}
			return call(cmd.OutOrStdout(), "POST", "/settings/shared-sites", map[string]any{"sites_data": sites})
		},
	})
	return cmd
}

// parseSites reads "name=url" or "name=url,owner/repo" arguments.
func parseSites(args []string) ([]model.Site, error) {
	sites := make([]model.Site, 0, len(args))
	for _, arg := range args {
		name, rest, ok := strings.Cut(arg, "=")
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("invalid site %q, want name=url[,repo]", arg)
		}
		url, repo, _ := strings.Cut(rest, ",")
		sites = append(sites, model.Site{SiteName: name, SiteURL: url, GitHubRepo: repo})
	}
	return sites, nil
}
