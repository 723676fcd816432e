package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"code.cryptopower.dev/group/govledger/ledger"
	"code.cryptopower.dev/group/govledger/rpcserver"
	flags "github.com/jessevdk/go-flags"
)

type keyArg struct {
	Key uint64 `positional-arg-name:"key" description:"Proposal key"`
}

type getCmd struct {
	app  *app
	Args keyArg `positional-args:"yes" required:"yes"`
}

type countCmd struct {
	app *app
}

type createCmd struct {
	app         *app
	Description string `short:"m" long:"description" description:"Proposal text" required:"yes"`
	Inactive    bool   `long:"inactive" description:"Create the proposal closed for voting"`
	Args        keyArg `positional-args:"yes" required:"yes"`
}

type editCmd struct {
	app         *app
	Description string `short:"m" long:"description" description:"New proposal text" required:"yes"`
	Inactive    bool   `long:"inactive" description:"Close the proposal for voting; omit to (re)open it"`
	Args        keyArg `positional-args:"yes" required:"yes"`
}

type endCmd struct {
	app  *app
	Args keyArg `positional-args:"yes" required:"yes"`
}

type voteCmd struct {
	app  *app
	Args struct {
		Key    uint64 `positional-arg-name:"key" description:"Proposal key"`
		Choice string `positional-arg-name:"choice" description:"approve, reject or pass"`
	} `positional-args:"yes" required:"yes"`
}

type serveCmd struct {
	app *app
}

func addCommands(parser *flags.Parser, a *app) error {
	commands := []struct {
		name, short string
		data        interface{}
	}{
		{"get", "Print the proposal stored at a key", &getCmd{app: a}},
		{"count", "Print the number of stored proposals", &countCmd{app: a}},
		{"create", "Create or overwrite the proposal at a key", &createCmd{app: a}},
		{"edit", "Replace the text and activity of an owned proposal", &editCmd{app: a}},
		{"end", "Close an owned proposal for voting", &endCmd{app: a}},
		{"vote", "Cast the caller's vote on a proposal", &voteCmd{app: a}},
		{"serve", "Serve the ledger over HTTP until interrupted", &serveCmd{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.short+".", c.data); err != nil {
			return err
		}
	}
	return nil
}

// stdout receives command results.
var stdout io.Writer = os.Stdout

func printJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *getCmd) Execute(_ []string) error {
	p, err := c.app.ledger.GetProposal(c.Args.Key)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func (c *countCmd) Execute(_ []string) error {
	n, err := c.app.ledger.ProposalCount()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, n)
	return nil
}

func (c *createCmd) Execute(_ []string) error {
	prev, err := c.app.ledger.CreateProposal(c.app.ctx, c.Args.Key, ledger.CreateProposal{
		Description: c.Description,
		IsActive:    !c.Inactive,
	})
	if err != nil {
		return err
	}
	if prev != nil {
		log.Warnf("Proposal %d already existed and was overwritten", c.Args.Key)
	}
	return printJSON(prev)
}

func (c *editCmd) Execute(_ []string) error {
	return c.app.ledger.EditProposal(c.app.ctx, c.Args.Key, ledger.CreateProposal{
		Description: c.Description,
		IsActive:    !c.Inactive,
	})
}

func (c *endCmd) Execute(_ []string) error {
	return c.app.ledger.EndProposal(c.app.ctx, c.Args.Key)
}

func (c *voteCmd) Execute(_ []string) error {
	choice, err := ledger.ParseChoice(c.Args.Choice)
	if err != nil {
		return err
	}
	return c.app.ledger.Vote(c.app.ctx, c.Args.Key, choice)
}

func (c *serveCmd) Execute(_ []string) error {
	return rpcserver.New(c.app.ledger).Run(c.app.ctx, c.app.cfg.Listen)
}
