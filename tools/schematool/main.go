package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"skema/lib/columnar"
	"skema/lib/compat"
	"skema/lib/schema"
)

type convertCmd struct {
	File string `arg:"positional,required" help:"schema JSON file to convert"`
}

type checkCmd struct {
	Old    string `arg:"positional,required" help:"old schema JSON file"`
	New    string `arg:"positional,required" help:"new schema JSON file"`
	Policy string `arg:"--policy" default:"backward" help:"backward, forward, full or none"`
}

type toolArgs struct {
	Convert *convertCmd `arg:"subcommand:convert" help:"convert a schema to its columnar layout"`
	Check   *checkCmd   `arg:"subcommand:check" help:"check whether the new schema may replace the old"`
}

func loadSchema(path string) (schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.FromJson(data)
}

func runConvert(cmd *convertCmd) error {
	node, err := loadSchema(cmd.File)
	if err != nil {
		return err
	}
	converted, err := columnar.Convert(node)
	if err != nil {
		return err
	}
	fmt.Printf("fingerprint: %s\n", schema.Fingerprint(node))
	for _, f := range converted.Fields {
		fmt.Printf("  %s\n", f.String())
	}
	return nil
}

func runCheck(cmd *checkCmd) error {
	policy, err := compat.ParsePolicy(cmd.Policy)
	if err != nil {
		return err
	}
	old, err := loadSchema(cmd.Old)
	if err != nil {
		return err
	}
	new, err := loadSchema(cmd.New)
	if err != nil {
		return err
	}
	res := compat.Check(old, new, policy)
	fmt.Println(res.String())
	for _, issue := range res.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}
	for _, warning := range res.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	if !res.Compatible {
		os.Exit(1)
	}
	return nil
}

func main() {
	var args toolArgs
	p := arg.MustParse(&args)
	var err error
	switch {
	case args.Convert != nil:
		err = runConvert(args.Convert)
	case args.Check != nil:
		err = runCheck(args.Check)
	default:
		p.Fail("expected a subcommand: convert or check")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}
