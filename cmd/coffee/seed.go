package main

import (
	"github.com/davranaff/coffee/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, products, locations and company info from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.connect(); err != nil {
				return err
			}

			_, err = seed.Apply(cmd.Context(), &a.log, a.services.Products, a.services.Info, data)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed/coffee.yaml", "seed file")
	return cmd
}
