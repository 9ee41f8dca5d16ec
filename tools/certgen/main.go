// Package main generates a self-signed server certificate and key for running
// the dashboard backend over HTTPS in development, writing them to the
// "certs" directory by default.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/AdminBoard/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "certgen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated host names and IPs")
	days := fs.Int("days", 365, "validity in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("days must be positive, got %d", *days)
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(names, time.Duration(*days)*24*time.Hour)
	if err != nil {
		return err
	}
	certPath, keyPath, err := certgen.WriteKeyPair(*dir, certPEM, keyPEM)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Certificate generated: run the server with -tls-cert %s -tls-key %s\n", certPath, keyPath)
	return nil
}
