package adminctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"modeld/internal/config"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// RootConfig holds the flags shared across the admin command tree.
type RootConfig struct {
	APIBase string
}

// NewRootConfig returns a RootConfig defaulted to the given API base URL.
func NewRootConfig(apiBase string) *RootConfig {
	if apiBase == "" {
		apiBase = "http://127.0.0.1:8080"
	}
	return &RootConfig{APIBase: apiBase}
}

// Commands returns the catalogue, pricing, and fleet subcommands bound to
// cfg, for embedding into a caller's own Cobra root (e.g. modeld's).
func Commands(cfg *RootConfig) []*cobra.Command {
	return []*cobra.Command{buildCatalogueCmd(), buildPricingCmd(cfg), buildFleetCmd(cfg)}
}

// BuildRootCmd wires the pricing, catalogue, and fleet subcommands onto a
// standalone Cobra root, matching the teacher's convention of a single
// command tree with a persistent-flag-backed Config threaded through RunE
// closures.
func BuildRootCmd() *cobra.Command {
	cfg := NewRootConfig("")

	root := &cobra.Command{
		Use:           "modelctl",
		Short:         "Operator CLI for a running modeld instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.APIBase, "api", cfg.APIBase, "base URL of the running modeld instance")
	root.AddCommand(Commands(cfg)...)
	return root
}

func buildCatalogueCmd() *cobra.Command {
	catalogueCmd := &cobra.Command{Use: "catalogue", Short: "Model catalogue utilities"}
	catalogueCmd.AddCommand(&cobra.Command{
		Use:   "validate <catalogue-path> [devices-path]",
		Short: "Load and validate a catalogue file without starting the server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			devicesPath := ""
			if len(args) == 2 {
				devicesPath = args[1]
			}
			devices := registry.NewDeviceRegistry(0)
			if devicesPath != "" {
				if err := config.LoadDevices(devicesPath, devices); err != nil {
					return fmt.Errorf("load devices: %w", err)
				}
			}
			cat, err := config.LoadCatalogue(args[0], devices)
			if err != nil {
				return fmt.Errorf("invalid catalogue: %w", err)
			}
			fmt.Printf("catalogue OK: %d model(s)\n", len(cat.Models))
			for _, m := range cat.Models {
				fmt.Printf("  %-24s mode=%-10s autostart=%v aliases=%v\n", m.Name, m.Mode, m.AutoStart, m.Aliases)
			}
			return nil
		},
	})
	return catalogueCmd
}

func buildPricingCmd(cfg *RootConfig) *cobra.Command {
	pricingCmd := &cobra.Command{Use: "pricing", Short: "Inspect and edit per-model billing configuration"}

	pricingCmd.AddCommand(&cobra.Command{
		Use:   "show <model>",
		Short: "Print a model's current pricing configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := NewClient(cfg.APIBase).Pricing(args[0])
			if err != nil {
				return err
			}
			if p.UseTiered {
				fmt.Printf("%s: tiered billing, %d tier(s)\n", args[0], len(p.Tiers))
				for _, t := range p.Tiers {
					fmt.Printf("  [%d] in=%d-%d out=%d-%d in_price=%.4f out_price=%.4f\n",
						t.Index, t.InMin, t.InMax, t.OutMin, t.OutMax, t.InPrice, t.OutPrice)
				}
			} else {
				fmt.Printf("%s: hourly billing at %.4f/hr\n", args[0], p.HourlyRate)
			}
			return nil
		},
	})

	pricingCmd.AddCommand(&cobra.Command{
		Use:   "set-hourly <model> <rate>",
		Short: "Switch a model to hourly billing at the given rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rate float64
			if _, err := fmt.Sscanf(args[1], "%f", &rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}
			client := NewClient(cfg.APIBase)
			if err := client.SetHourlyPrice(args[0], rate); err != nil {
				return err
			}
			return client.SetBillingMode(args[0], "hourly")
		},
	})

	pricingCmd.AddCommand(&cobra.Command{
		Use:   "set-tiered <model>",
		Short: "Switch a model to tiered billing (tiers set separately via upsert-tier)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewClient(cfg.APIBase).SetBillingMode(args[0], "tiered")
		},
	})

	pricingCmd.AddCommand(&cobra.Command{
		Use:   "upsert-tier <model> <index> <in_min> <in_max> <out_min> <out_max> <in_price> <out_price>",
		Short: "Create or replace one pricing tier row",
		Args:  cobra.ExactArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := parseTierArgs(args[1:])
			if err != nil {
				return err
			}
			return NewClient(cfg.APIBase).UpsertTier(args[0], tier)
		},
	})

	pricingCmd.AddCommand(&cobra.Command{
		Use:   "delete-tier <model> <index>",
		Short: "Remove a pricing tier by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var idx int
			if _, err := fmt.Sscanf(args[1], "%d", &idx); err != nil {
				return fmt.Errorf("invalid tier index %q: %w", args[1], err)
			}
			return NewClient(cfg.APIBase).DeleteTier(args[0], idx)
		},
	})

	return pricingCmd
}

func parseTierArgs(args []string) (types.Tier, error) {
	var t types.Tier
	fields := []*int{&t.Index, &t.InMin, &t.InMax, &t.OutMin, &t.OutMax}
	for i, f := range fields {
		if _, err := fmt.Sscanf(args[i], "%d", f); err != nil {
			return t, fmt.Errorf("invalid integer %q: %w", args[i], err)
		}
	}
	if _, err := fmt.Sscanf(args[5], "%f", &t.InPrice); err != nil {
		return t, fmt.Errorf("invalid in_price %q: %w", args[5], err)
	}
	if _, err := fmt.Sscanf(args[6], "%f", &t.OutPrice); err != nil {
		return t, fmt.Errorf("invalid out_price %q: %w", args[6], err)
	}
	return t, nil
}

func buildFleetCmd(cfg *RootConfig) *cobra.Command {
	fleetCmd := &cobra.Command{Use: "fleet", Short: "Inspect and control the running model fleet"}

	fleetCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print every model's lifecycle state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := NewClient(cfg.APIBase).AllModelsInfo()
			if err != nil {
				return err
			}
			for name, m := range info.Models {
				fmt.Printf("%-24s state=%-10s in_flight=%d variant=%s\n", name, m.State, m.InFlight, m.Variant)
			}
			return nil
		},
	})

	fleetCmd.AddCommand(&cobra.Command{
		Use:   "start <alias>",
		Short: "Trigger a lazy start for a model alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewClient(cfg.APIBase).StartModel(args[0])
		},
	})

	fleetCmd.AddCommand(&cobra.Command{
		Use:   "stop <alias>",
		Short: "Drain and stop a running model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewClient(cfg.APIBase).StopModel(args[0])
		},
	})

	return fleetCmd
}
