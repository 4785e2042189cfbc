package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/client"
	"github.com/mapkv/mapkv/rpc/codec"
)

var rootCmd = &cobra.Command{
	Use:   "mapkv-client",
	Short: "Interactively send requests to a mapkv server",
	Long:  "Prompts for a server endpoint, then repeatedly prompts for an operation, key and value and sends them as one request each.",
	RunE:  run,
}

func run(cmd *cobra.Command, _ []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	endpoint, err := prompt(in, out, "server address")
	if err != nil {
		return err
	}

	c := client.New(10 * time.Second)
	defer c.Close()

	for {
		opStr, err := prompt(in, out, "operation (INSERT/UPDATE/DELETE/GET, I/U/D/G, 0/1/2/3)")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		op, ok := store.ParseOperation(strings.ToUpper(strings.TrimSpace(opStr)))
		if !ok {
			fmt.Fprintf(out, "unrecognized operation %q\n", opStr)
			continue
		}

		key, err := prompt(in, out, "key")
		if err != nil {
			return err
		}
		var value string
		if op == store.OpInsert || op == store.OpUpdate {
			value, err = prompt(in, out, "value")
			if err != nil {
				return err
			}
		}

		resp, err := c.Send(endpoint, codec.Request{Operation: op, Key: key, Value: value})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printResponse(out, resp)
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printResponse(out io.Writer, resp codec.Response) {
	if resp.Error != store.ErrNone {
		fmt.Fprintf(out, "%s -> %s\n", resp.Operation, resp.Error)
		return
	}
	if resp.Operation == store.OpGet {
		fmt.Fprintf(out, "%s -> %s (value=%q)\n", resp.Operation, resp.Error, resp.Value)
		return
	}
	fmt.Fprintf(out, "%s -> %s\n", resp.Operation, resp.Error)
}
