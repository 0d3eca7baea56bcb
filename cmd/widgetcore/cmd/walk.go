package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-drift/widgetcore/pkg/dispatch"
)

func init() {
	RegisterCommand(&Command{
		Name:  "walk",
		Short: "Print the scene hierarchy and visit orders",
		Long: `Build the scene from configuration and print its hierarchy together
with the pre-order (redraw) and post-order (pointer) visit orders the
dispatcher uses.`,
		Usage: "widgetcore [--config FILE] walk",
		Run:   runWalk,
	})
}

func runWalk(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := dispatch.New(
		dispatch.WithCapacity(cfg.Capacity),
		dispatch.WithRootBounds(screenBounds(cfg.Scene)),
	)
	if err != nil {
		return err
	}
	s, err := buildScene(d, cfg.Scene, zerolog.Nop())
	if err != nil {
		return err
	}
	writeWalk(os.Stdout, s)
	return nil
}

func writeWalk(out io.Writer, s *scene) {
	root := s.d.Root().Node()

	fmt.Fprintln(out, "Hierarchy:")
	for n := range root.PreOrder() {
		depth := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			depth++
		}
		e := n.Owner()
		r := e.(interface{ AbsoluteBounds() dispatch.Rect }).AbsoluteBounds()
		fmt.Fprintf(out, "  %s%s [%d,%d %dx%d]\n", strings.Repeat("  ", depth), nameOf(e), r.XMin, r.YMin, r.Width(), r.Height())
	}

	var pre, post []string
	for n := range root.PreOrder() {
		pre = append(pre, nameOf(n.Owner()))
	}
	for n := range root.PostOrder() {
		post = append(post, nameOf(n.Owner()))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Pre-order:  %s\n", strings.Join(pre, " "))
	fmt.Fprintf(out, "Post-order: %s\n", strings.Join(post, " "))
}
