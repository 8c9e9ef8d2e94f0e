package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/taskpilot/taskpilot/internal/agent"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/errors"
	"github.com/taskpilot/taskpilot/internal/tools"
	"github.com/taskpilot/taskpilot/internal/web"
)

// defaultUser identifies the local user for CLI invocations. Identity
// verification is out of scope for a single-user binary.
const defaultUser = "local"

// userFlag is shared by every command that touches user-scoped data.
func userFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: defaultUser, Usage: "User ID"}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "taskpilot",
		Usage:   "Conversational task assistant",
		Version: Version,
		Commands: []*cli.Command{
			chatCmd(db, cfg),
			tasksCmd(db, cfg),
			addCmd(db, cfg),
			completeCmd(db),
			deleteCmd(db),
			updateCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// chatCmd creates the chat command: one conversational turn.
func chatCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send one message to the assistant",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "conversation", Aliases: []string{"c"}, Usage: "Conversation ID to resume"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidInput("message argument is required"))
			}

			orch := agent.NewOrchestrator(db, cfg)
			output, err := orch.Chat(c.Context, agent.ChatInput{
				UserID:         c.String("user"),
				Message:        c.Args().First(),
				ConversationID: c.String("conversation"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// tasksCmd creates the tasks command: list tasks directly.
func tasksCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tasks",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Value: "all", Usage: "Filter: all|pending|completed|overdue"},
			&cli.StringFlag{Name: "sort-by", Value: "created_at", Usage: "Sort column: created_at|due_date|priority"},
			&cli.StringFlag{Name: "sort-order", Value: "desc", Usage: "Sort order: asc|desc"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum tasks to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := tools.List(c.Context, db, cfg, tools.ListInput{
				UserID:    c.String("user"),
				Filter:    c.String("filter"),
				SortBy:    c.String("sort-by"),
				SortOrder: c.String("sort-order"),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// addCmd creates the add command.
func addCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		ArgsUsage: "<content>",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "Due date (ISO 8601, e.g. 2026-09-01)"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority: low|medium|high"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidInput("content argument is required"))
			}

			input := tools.CreateInput{
				UserID:  c.String("user"),
				Content: c.Args().First(),
			}
			if due := c.String("due"); due != "" {
				input.DueDate = &due
			}
			if priority := c.String("priority"); priority != "" {
				input.Priority = &priority
			}

			output, err := tools.Create(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// completeCmd creates the complete command.
func completeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark a task as completed",
		ArgsUsage: "<task-id>",
		Flags:     []cli.Flag{userFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidInput("task-id argument is required"))
			}

			output, err := tools.Complete(c.Context, db, tools.CompleteInput{
				UserID: c.String("user"),
				TaskID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a task",
		ArgsUsage: "<task-id>",
		Flags:     []cli.Flag{userFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidInput("task-id argument is required"))
			}

			output, err := tools.Delete(c.Context, db, tools.DeleteInput{
				UserID: c.String("user"),
				TaskID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of a task",
		ArgsUsage: "<task-id>",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "content", Usage: "New task content"},
			&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "New due date (ISO 8601)"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "New priority: low|medium|high"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "New status: pending|completed"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidInput("task-id argument is required"))
			}

			input := tools.UpdateInput{
				UserID: c.String("user"),
				TaskID: c.Args().First(),
			}
			if content := c.String("content"); content != "" {
				input.Content = &content
			}
			if due := c.String("due"); due != "" {
				input.DueDate = &due
			}
			if priority := c.String("priority"); priority != "" {
				input.Priority = &priority
			}
			if status := c.String("status"); status != "" {
				input.Status = &status
			}

			output, err := tools.Update(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command: start the web UI and chat API.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI and HTTP chat API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8619, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := err.(*errors.PilotError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
