package tui

import (
	"context"
	"database/sql"

	"github.com/oneirolab/dreamweave/pkg/dreams"

	tea "github.com/charmbracelet/bubbletea"
)

// List dream entries from the database and return tea data
func listEntries(db *sql.DB) tea.Cmd {
	return func() tea.Msg {
		page, err := dreams.ListEntries(context.Background(), db, dreams.Filter{}, dreams.Page{Limit: 200})
		if err != nil {
			return err
		}
		return page.Items
	}
}

type entryDetailsMsg struct {
	detail dreams.EntryDetail
}

// Get a combined message with the entry and everything attached to it
func getEntryDetails(db *sql.DB, entryID int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := dreams.GetEntryDetail(context.Background(), db, entryID)
		if err != nil {
			return err
		}
		return entryDetailsMsg{detail: detail}
	}
}

// Get database name and file path
func getDbPragmaList(db *sql.DB) (string, string) {
	var name, file string
	err := db.QueryRow(`PRAGMA database_list`).Scan(new(int), &name, &file)
	if err != nil {
		return name, file
	}
	return name, file
}
