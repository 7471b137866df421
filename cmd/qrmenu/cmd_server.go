package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/qrmenu/internal/kernel"
	"github.com/shashiranjanraj/qrmenu/internal/server"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
	"github.com/shashiranjanraj/qrmenu/pkg/router"
)

// qrmenu serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Boot()
		defer logger.Close()
		return server.Start()
	},
}

// qrmenu route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are built but never called, so no database is needed.
		k, err := kernel.NewHTTPKernel(kernel.Options{})
		if err != nil {
			return err
		}
		defer k.Close()
		return printRoutes(cmd.OutOrStdout(), k.Routes())
	},
}

func printRoutes(out io.Writer, infos []router.RouteInfo) error {
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
