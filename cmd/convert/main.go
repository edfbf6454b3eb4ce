// Command convert is a demonstration client: it posts a source URL to a
// running conversion server and writes the returned audio file to disk.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"audioconvert/internal/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "conversion server base URL")
	token := flag.String("token", os.Getenv("CONV_AUTH_SECRET"), "bearer token")
	output := flag.String("o", "", "output file (defaults to the server-suggested name)")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: convert [flags] <source-url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	sourceURL := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var buf bytes.Buffer
	c := client.New(*serverURL, *token)
	info, err := c.Convert(ctx, sourceURL, &buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conversion failed: %v\n", err)
		os.Exit(1)
	}

	dest := *output
	if dest == "" {
		dest = info.Filename
	}
	if dest == "" {
		dest = "converted.mp3"
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", dest, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d bytes, %s, server took %dms)\n",
		dest, info.SizeBytes, info.ContentType, info.ProcessingTimeMs)
}
