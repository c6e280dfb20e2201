// Package main writes a self-signed TLS certificate for the server and
// prints a bearer token for a local user.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/devcreds"
	"github.com/spf13/pflag"
)

func main() {
	dir := pflag.String("dir", "certs", "output directory for server.crt and server.key")
	hosts := pflag.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	secret := pflag.String("secret", os.Getenv("NOTEKEEPER_AUTH_JWT_SECRET"), "JWT signing secret")
	user := pflag.String("user", "", "user id to mint a token for")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	skipCert := pflag.Bool("skip-cert", false, "only mint a token")
	pflag.Parse()

	if !*skipCert {
		if err := writeCert(*dir, strings.Split(*hosts, ",")); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("✅ Certificate written to %s\n", *dir)
	}

	if *user == "" {
		return
	}
	tok, err := devcreds.MintToken([]byte(*secret), *user, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

func writeCert(dir string, hosts []string) error {
	certPEM, keyPEM, err := devcreds.SelfSignedCert(hosts, time.Now(), 365*24*time.Hour)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "server.crt"), certPEM, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "server.key"), keyPEM, 0o600)
}
