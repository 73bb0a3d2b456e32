// Package flagx lets several components read their own flags from the
// same command line. Each component parses only the flags it defines and
// ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// filter keeps args whose flag name is in allowed, with their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A separate value is taken only when the next argument does not start
// with '-'. Names mapped to true are boolean and never take one. The
// result is never nil.
func filter(args []string, allowed map[string]bool) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isBool, ok := allowed[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ParseKnown parses into fs only the arguments naming flags that fs
// defines, in either the -name or --name form.
func ParseKnown(fs *flag.FlagSet, args []string) error {
	allowed := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) {
		bf, ok := f.Value.(interface{ IsBoolFlag() bool })
		isBool := ok && bf.IsBoolFlag()
		allowed["-"+f.Name] = isBool
		allowed["--"+f.Name] = isBool
	})
	return fs.Parse(filter(args, allowed))
}

// ConfigPath returns the config file named by -c or -config in args, or ""
// when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = ParseKnown(fs, args)

	return config
}
