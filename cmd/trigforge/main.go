// Command trigforge is the minimal non-interactive CLI entry point
// for regenerating Galaxy source: with no flag it writes every configured library's
// generated Galaxy text to a fixed path next to the config file; a
// "validate" subcommand parses every configured library and reports
// broken references without writing anything. The interactive shell
// (-i) is an external collaborator; trigforge prints a
// pointer to it and exits non-zero rather than silently no-op.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/galaxyscript/trigforge/codegen"
	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/internal/cache"
	"github.com/galaxyscript/trigforge/internal/config"
	"github.com/galaxyscript/trigforge/parser"
	"github.com/galaxyscript/trigforge/serializer"
)

var configPath string
var interactive bool
var noCache bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "trigforge",
		Short: "Regenerate Galaxy source from a trigger element tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				fmt.Fprintln(os.Stderr, "trigforge -i is not implemented here; use the interactive shell tool that wraps this package's mutation API.")
				os.Exit(1)
			}
			return runWrite()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "trigforge.json", "path to the JSON configuration file")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start the interactive shell (external collaborator, not implemented here)")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the codegen cache")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse every configured library and report broken references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate()
		},
	}
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadRepository parses the Native library and every project library
// named by cfg into a single core.Repository.
func loadRepository(cfg *config.Config) (*core.Repository, error) {
	repo := core.NewRepository()

	native, err := parser.ParseTriggers(cfg.Native)
	if err != nil {
		return nil, fmt.Errorf("parsing native library: %w", err)
	}
	native.Tag = core.NativeLibraryTag
	native.Name = core.NativeLibraryTag
	if err := parser.ParseTriggerStrings(native, cfg.NativeTriggerStrings); err != nil {
		return nil, fmt.Errorf("parsing native trigger strings: %w", err)
	}
	repo.AddLibrary(native)

	for _, libCfg := range cfg.Libraries {
		lib, err := parser.ParseTriggers(libCfg.TriggersFile)
		if err != nil {
			return nil, fmt.Errorf("parsing library %q: %w", libCfg.Name, err)
		}
		if libCfg.Name != "" {
			lib.Name = libCfg.Name
		}
		if libCfg.TriggerStrings != "" {
			if err := parser.ParseTriggerStrings(lib, libCfg.TriggerStrings); err != nil {
				return nil, fmt.Errorf("parsing trigger strings for %q: %w", libCfg.Name, err)
			}
		}
		if libCfg.DocumentInfo != "" {
			if err := parser.ParseDependencies(lib, libCfg.DocumentInfo); err != nil {
				if _, ok := err.(*core.RecoverableError); !ok {
					return nil, fmt.Errorf("parsing document info for %q: %w", libCfg.Name, err)
				}
			}
		}
		repo.AddLibrary(lib)
	}

	return repo, nil
}

// runWrite implements the default "no flag" behavior: generate every
// configured project library's Galaxy text and write it to
// "Lib<LibraryTag>.galaxy" next to the config file. The Native library is
// never (re)generated or written.
func runWrite() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	repo, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	var c *cache.Cache
	if !noCache {
		c, err = cache.Connect(cfg.CacheDSN)
		if err != nil {
			return fmt.Errorf("connecting codegen cache: %w", err)
		}
		defer c.Close()
	}

	gen := codegen.NewContext(repo)
	outDir := filepath.Dir(configPath)

	for _, libCfg := range cfg.Libraries {
		lib, ok := repo.Library(libCfgTag(repo, libCfg))
		if !ok {
			continue
		}

		var inputs cache.Inputs
		var text string
		if c != nil {
			inputs = cache.Inputs{
				LibraryTag:     lib.Tag,
				TriggersFile:   libCfg.TriggersFile,
				TriggerStrings: libCfg.TriggerStrings,
				DocumentInfo:   libCfg.DocumentInfo,
				Dependencies:   lib.Dependencies,
			}
			if cached, hit, err := c.Get(inputs); err == nil && hit {
				text = cached
			}
		}

		if text == "" {
			text, err = gen.CodegenLibrary(lib)
			if err != nil {
				return fmt.Errorf("generating library %q: %w", lib.Tag, err)
			}
			if c != nil {
				if err := c.Put(inputs, text); err != nil {
					fmt.Fprintln(os.Stderr, "warning: caching codegen output:", err)
				}
			}
		}

		outPath := filepath.Join(outDir, "Lib"+lib.Tag+".galaxy")
		if err := serializer.WriteFileAtomic(outPath, strings.Split(text, "\n")); err != nil {
			return fmt.Errorf("writing %q: %w", outPath, err)
		}
		fmt.Println("wrote", outPath)
	}

	return nil
}

// libCfgTag resolves a LibraryPaths entry to its parsed library's tag by
// matching on the display name assigned during loadRepository.
func libCfgTag(repo *core.Repository, libCfg config.LibraryPaths) string {
	for _, lib := range repo.Libraries() {
		if lib.Name == libCfg.Name {
			return lib.Tag
		}
	}
	return ""
}

// runValidate parses every configured library and reports any broken
// cross-library reference it can detect cheaply, without generating or
// writing anything.
func runValidate() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	repo, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	broken := 0
	for _, lib := range repo.Libraries() {
		if lib.Tag == core.NativeLibraryTag {
			continue
		}
		for _, obj := range lib.Objects() {
			if obj.Kind != core.KindFunctionCall {
				continue
			}
			if _, err := resolveFunctionDef(repo, lib, obj); err != nil {
				fmt.Printf("%s/%s/%s: %v\n", lib.Tag, obj.Kind, obj.ID, err)
				broken++
			}
		}
	}

	if broken > 0 {
		return fmt.Errorf("%d broken reference(s) found", broken)
	}
	fmt.Println("no broken references found")
	return nil
}

var functionDefLinePattern = regexp.MustCompile(`<FunctionDef Type="FunctionDef" Library="(\w+)" Id="([0-9A-F]{8})"`)

func resolveFunctionDef(repo *core.Repository, lib *core.Library, call *core.Element) (*core.Element, error) {
	for _, line := range call.Lines {
		if ref, ok := parseFunctionDefLine(line); ok {
			return repo.Resolve(ref)
		}
	}
	return nil, core.NewBrokenReference("FunctionCall %s/%s has no FunctionDef reference", lib.Tag, call.ID)
}

func parseFunctionDefLine(line string) (core.ElementRef, bool) {
	m := functionDefLinePattern.FindStringSubmatch(line)
	if m == nil {
		return core.ElementRef{}, false
	}
	return core.ElementRef{Kind: core.KindFunctionDef, Library: m[1], ID: m[2]}, true
}
