package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/api"
	"github.com/ghndrx/hearth-mobile-sub001/internal/client"
	"github.com/ghndrx/hearth-mobile-sub001/internal/config"
	"github.com/ghndrx/hearth-mobile-sub001/internal/profile"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
)

func main() {
	addrFlag := flag.String("addr", "", "daemon base URL (overrides config, e.g. http://127.0.0.1:8745)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c := client.New(resolveAddr(*addrFlag))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot reach daemon: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, *jsonFlag)
	case "search":
		cmdSearch(ctx, c, args[1:], *jsonFlag)
	case "refresh":
		cmdRefresh(ctx, c, *jsonFlag)
	case "channels":
		cmdChannels(ctx, c, *jsonFlag)
	case "seed":
		cmdSeed(ctx, c)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func resolveAddr(override string) string {
	if override != "" {
		return override
	}
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		cfg = config.Default()
	}
	return cfg.APIBaseURL()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: hearthctl [--addr <url>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                     Show search session status")
	fmt.Fprintln(os.Stderr, "  search [flags] <query>     Run a search and wait for results")
	fmt.Fprintln(os.Stderr, "  refresh                    Re-run the last search")
	fmt.Fprintln(os.Stderr, "  channels                   List known channels")
	fmt.Fprintln(os.Stderr, "  seed                       Load a small demo corpus")
}

func cmdStatus(ctx context.Context, c *client.Client, jsonOut bool) {
	state, err := c.SearchState(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(state)
		return
	}
	fmt.Printf("Status:   %s\n", state.Status)
	fmt.Printf("Sequence: %d\n", state.Sequence)
	if state.Query != "" {
		fmt.Printf("Query:    %q\n", state.Query)
	}
	fmt.Printf("Results:  %d\n", len(state.Results))
	if state.Error != "" {
		fmt.Printf("Error:    %s\n", state.Error)
	}
}

func cmdSearch(ctx context.Context, c *client.Client, args []string, jsonOut bool) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	channel := fs.String("channel", "", "restrict to this channel ID")
	author := fs.String("author", "", "restrict to this author ID")
	hasFile := fs.Bool("has-file", false, "only messages with attachments")
	_ = fs.Parse(args)

	query := ""
	if fs.NArg() > 0 {
		query = fs.Arg(0)
	}

	state, err := c.WaitSearch(ctx, api.SearchRequest{
		Query:     query,
		ChannelID: *channel,
		AuthorID:  *author,
		HasFile:   *hasFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if state.Status == string(search.StatusError) {
		fmt.Fprintf(os.Stderr, "search failed: %s\n", state.Error)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(state.Results)
		return
	}
	printResults(state.Results)
}

func cmdRefresh(ctx context.Context, c *client.Client, jsonOut bool) {
	issued, err := c.RefreshSearch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(issued)
		return
	}
	fmt.Printf("Refreshing as sequence %d\n", issued.Sequence)
}

func cmdChannels(ctx context.Context, c *client.Client, jsonOut bool) {
	channels, err := c.ListChannels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(channels)
		return
	}
	if len(channels) == 0 {
		fmt.Println("No channels known.")
		return
	}
	for _, ch := range channels {
		fmt.Printf("%-20s %s/%s\n", ch.ID, ch.ServerName, ch.Name)
	}
}

func printResults(results []api.Result) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, r := range results {
		ts := time.UnixMilli(r.Message.CreatedAt).Format("2006-01-02 15:04")
		file := ""
		if len(r.Message.Attachments) > 0 {
			file = " [file]"
		}
		fmt.Printf("%s  #%s  %s:%s %s\n", ts, r.ChannelName, r.AuthorName, file, r.Message.Content)
	}
}

// cmdSeed loads a small demo corpus so the search surfaces have
// something to chew on without a real ingest source.
func cmdSeed(ctx context.Context, c *client.Client) {
	users := []search.User{
		{ID: "alice", DisplayName: "Alice", Username: "alice"},
		{ID: "bob", DisplayName: "Bob Santos", Username: "bsantos"},
		{ID: "carol", DisplayName: "Carol", Username: "carol"},
		{ID: "dave", DisplayName: "Dave", Username: "dave"},
	}
	channels := []search.Channel{
		{ID: "general", Name: "general", ServerName: "Hearth HQ"},
		{ID: "random", Name: "random", ServerName: "Hearth HQ"},
		{ID: "announcements", Name: "announcements", ServerName: "Hearth HQ"},
		{ID: "help", Name: "help", ServerName: "Hearth HQ"},
	}
	now := time.Now().UnixMilli()
	msgs := []search.Message{
		{ID: "msg1", ChannelID: "general", AuthorID: "alice", Content: "Welcome to the general channel", CreatedAt: now - 4000},
		{ID: "msg2", ChannelID: "general", AuthorID: "bob", Content: "I uploaded the project files to the shared drive", CreatedAt: now - 3000,
			Attachments: []search.Attachment{{ID: "att1", Filename: "roadmap.pdf", ContentType: "application/pdf", Size: 2048}}},
		{ID: "msg3", ChannelID: "random", AuthorID: "alice", Content: "anyone up for lunch?", CreatedAt: now - 2000},
		{ID: "msg4", ChannelID: "announcements", AuthorID: "carol", Content: "Release v2.0 ships on Friday", CreatedAt: now - 1000},
		{ID: "msg5", ChannelID: "help", AuthorID: "dave", Content: "how do I reset my password", CreatedAt: now},
	}

	for _, u := range users {
		if err := c.IngestUser(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	for _, ch := range channels {
		if err := c.IngestChannel(ctx, ch); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := c.IngestBatch(ctx, msgs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d users, %d channels, %d messages.\n", len(users), len(channels), len(msgs))
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
