// Command reddit-tool runs a single Reddit tool and prints its text result.
//
//	reddit-tool -list
//	reddit-tool fetch_reddit_hot_threads '{"subreddit": "golang", "limit": 5}'
//
// Credentials and logging are configured as for reddit-mcp.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	redditmcp "github.com/jamesprial/go-reddit-mcp"
	"github.com/jamesprial/go-reddit-mcp/internal/config"
	"github.com/jamesprial/go-reddit-mcp/internal/logging"
	"github.com/jamesprial/go-reddit-mcp/pkg/tools"
)

func main() {
	list := flag.Bool("list", false, "list the available tools and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-list] <tool> [json-args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		for _, def := range tools.Definitions {
			fmt.Printf("%-28s %s\n", def.Name, def.Description)
			for _, p := range def.Params {
				req := ""
				if p.Required {
					req = " (required)"
				}
				fmt.Printf("    %-14s %-7s%s %s\n", p.Name, p.Type, req, p.Description)
			}
		}
		return
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	args := tools.Args{}
	if flag.NArg() == 2 {
		dec := json.NewDecoder(strings.NewReader(flag.Arg(1)))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			log.Fatalf("Invalid tool arguments: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	client, err := redditmcp.NewClient(cfg.ClientConfig(logger))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := tools.New(client, tools.WithLogger(logger)).Invoke(ctx, flag.Arg(0), args)
	if errors.Is(err, tools.ErrUnknownTool) {
		log.Fatalf("%v (run with -list to see the tools)", err)
	}
	if err != nil {
		log.Fatalf("Invalid tool arguments: %v", err)
	}
	fmt.Println(out)
}
