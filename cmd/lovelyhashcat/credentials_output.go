package main

import (
	"fmt"
	"io"

	"lovelyhashcat/internal/history"
	"lovelyhashcat/internal/potfile"
)

var credentialColumns = []column{
	{title: "#", right: true},
	{title: "Hash"},
	{title: "Password"},
	{title: "Source"},
}

func printCredentials(out io.Writer, entries []potfile.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No passwords recovered")
		return
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{itoa(i + 1), e.Hash, e.Plain()})
	}
	fmt.Fprintln(out, renderTable(credentialColumns[:3], rows))
}

func printHistoryResults(out io.Writer, results []*history.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results recorded")
		return
	}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		plain := potfile.Entry{Hash: r.Hash, Password: r.Password}.Plain()
		rows = append(rows, []string{itoa(i + 1), r.Hash, plain, titleLabel(r.Source)})
	}
	fmt.Fprintln(out, renderTable(credentialColumns, rows))
}

func resultEntries(results []*history.Result) []potfile.Entry {
	entries := make([]potfile.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, potfile.Entry{Hash: r.Hash, Password: r.Password})
	}
	return entries
}
