package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/client"
	"github.com/atinyakov/AdminBoard/internal/models"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  help
  login <username> [password]
  info
  logout
  list <resource> [key=value ...]
  get <resource> <id>
  add <resource>
  edit <resource> <id>
  pv <resource> <id> [delta]
  delete <resource> <id>
  exit
Resources: article, meetingroom`

// repl runs the interactive shell loop, accepting commands to manage records.
// onToken is called whenever login or logout changes the token.
func repl(ctx context.Context, c *client.Client, in io.Reader, out io.Writer, onToken func(string)) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "adminboard> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Fprintln(out, helpText)
		case "login":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: login <username> [password]")
				continue
			}
			password := ""
			if len(args) > 2 {
				password = args[2]
			}
			if _, err := c.Login(ctx, args[1], password); err != nil {
				fmt.Fprintln(out, "Login failed:", err)
				continue
			}
			onToken(c.Token)
			fmt.Fprintln(out, "Logged in")
		case "info":
			info, err := c.Info(ctx)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			printJSON(out, info)
		case "logout":
			if err := c.Logout(ctx); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			onToken("")
			fmt.Fprintln(out, "Logged out")
		case "list":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: list <resource> [key=value ...]")
				continue
			}
			params := url.Values{}
			for _, kv := range args[2:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					fmt.Fprintf(out, "Ignoring %q, expected key=value\n", kv)
					continue
				}
				params.Set(k, v)
			}
			res, err := c.List(ctx, args[1], params)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "Total: %d\n", res.Total)
			for _, rec := range res.Items {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%d\n", rec.ID, rec.Title, rec.Author, rec.Status, rec.Pageviews)
			}
		case "get":
			res, id, ok := resourceAndID(out, args, "get")
			if !ok {
				continue
			}
			rec, err := c.Detail(ctx, res, id)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			printJSON(out, rec)
		case "add":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: add <resource>")
				continue
			}
			rec, err := client.PromptRecord(scanner, out, models.Record{})
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			id, err := c.Create(ctx, args[1], rec)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "Created %s %d\n", args[1], id)
		case "edit":
			res, id, ok := resourceAndID(out, args, "edit")
			if !ok {
				continue
			}
			current, err := c.Detail(ctx, res, id)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			rec, err := client.PromptRecord(scanner, out, *current)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			if err := c.Update(ctx, res, rec); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintln(out, "Record updated")
		case "pv":
			res, id, ok := resourceAndID(out, args, "pv")
			if !ok {
				continue
			}
			delta := int64(1)
			if len(args) > 3 {
				n, err := strconv.ParseInt(args[3], 10, 64)
				if err != nil {
					fmt.Fprintln(out, "Usage: pv <resource> <id> [delta]")
					continue
				}
				delta = n
			}
			if err := c.Pageviews(ctx, res, id, delta); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintln(out, "Pageviews updated")
		case "delete":
			res, id, ok := resourceAndID(out, args, "delete")
			if !ok {
				continue
			}
			if err := c.Delete(ctx, res, id); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintln(out, "Record deleted")
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func resourceAndID(out io.Writer, args []string, cmd string) (string, int64, bool) {
	if len(args) < 3 {
		fmt.Fprintf(out, "Usage: %s <resource> <id>\n", cmd)
		return "", 0, false
	}
	id, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid id %q\n", args[2])
		return "", 0, false
	}
	return args[1], id, true
}

func printJSON(out io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(out, string(b))
}

// main parses command-line flags and starts the shell.
func main() {
	var (
		baseURL     string
		app         string
		caFile      string
		sessionPath string
		showVer     bool
	)

	home, _ := os.UserHomeDir()
	flag.StringVar(&baseURL, "url", "", "server base URL (default http://localhost:8080)")
	flag.StringVar(&app, "app", "", "API prefix (default vue-admin-template)")
	flag.StringVar(&caFile, "ca", "", "path to CA or server cert for HTTPS")
	flag.StringVar(&sessionPath, "session", filepath.Join(home, ".adminboard", "session.json"), "session file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("AdminBoard Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	session, err := client.LoadSession(sessionPath)
	if err != nil {
		log.Fatal(err)
	}
	if baseURL != "" {
		session.BaseURL = baseURL
	}
	if app != "" {
		session.App = app
	}
	if session.BaseURL == "" {
		session.BaseURL = "http://localhost:8080"
	}
	if session.App == "" {
		session.App = "vue-admin-template"
	}

	var httpClient *http.Client
	if caFile != "" {
		httpClient, err = client.NewTLSHTTPClient(caFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	c := client.New(session.BaseURL, session.App, httpClient)
	c.Token = session.Token

	repl(context.Background(), c, os.Stdin, os.Stdout, func(token string) {
		session.Token = token
		if err := session.Save(sessionPath); err != nil {
			log.Printf("failed to save session: %v", err)
		}
	})
}
