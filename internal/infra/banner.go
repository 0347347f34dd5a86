package infra

import (
	"fmt"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner. Every run places a live order,
// so the warning is unconditional.
func PrintBanner(cfg *Config) {
	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#            Blofin Order Round-Trip Client               #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#   INSTRUMENT: %-33s #%s\n", ColorCyan, cfg.Trading.InstID, ColorReset)
	fmt.Printf("%s#   SIZE:       %-33s #%s\n", ColorCyan, cfg.Trading.Size, ColorReset)
	fmt.Printf("%s#   VERSION:    %-33s #%s\n", ColorCyan, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#   WARNING: THIS RUN PLACES AND CANCELS A LIVE ORDER     #%s\n", ColorRed, ColorReset)
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Println()
}
