package repo

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/log"
	"github.com/named-data/ndnrepo/std/ndn"
	"github.com/named-data/ndnrepo/std/utils"
	"github.com/named-data/ndnrepo/std/utils/toolutils"
	"github.com/spf13/cobra"
)

var CmdRepo = &cobra.Command{
	Use:     "run CONFIG-FILE",
	Short:   "Start the NDN Data Repository Daemon",
	GroupID: "run",
	Version: utils.Version,
	Args:    cobra.ExactArgs(1),
	Run:     run,
}

// selectorFlags are the Interest selectors accepted on the command line.
type selectorFlags struct {
	rightmost bool
	minSuffix int
	maxSuffix int
	exclude   []string
	publisher string
}

func (f *selectorFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.rightmost, "rightmost", false, "Prefer the rightmost child")
	cmd.Flags().IntVar(&f.minSuffix, "min-suffix", -1, "Minimum number of suffix components")
	cmd.Flags().IntVar(&f.maxSuffix, "max-suffix", -1, "Maximum number of suffix components")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "Exclude a child component (repeatable)")
	cmd.Flags().StringVar(&f.publisher, "publisher", "", "Only accept data signed by this key name")
}

func (f *selectorFlags) interest(nameStr string) (*ndn.Interest, error) {
	name, err := enc.NameFromStr(nameStr)
	if err != nil {
		return nil, fmt.Errorf("invalid name (%s): %w", nameStr, err)
	}

	interest := &ndn.Interest{Name: name}
	if f.minSuffix >= 0 {
		interest.MinSuffixComponents.Set(uint64(f.minSuffix))
	}
	if f.maxSuffix >= 0 {
		interest.MaxSuffixComponents.Set(uint64(f.maxSuffix))
	}
	if f.rightmost {
		interest.ChildSelector = 1
	}
	if f.publisher != "" {
		key, err := enc.NameFromStr(f.publisher)
		if err != nil {
			return nil, fmt.Errorf("invalid publisher key name (%s): %w", f.publisher, err)
		}
		interest.PublisherPublicKeyLocator = &ndn.KeyLocator{Name: key}
	}
	if len(f.exclude) > 0 {
		comps := make([]enc.Component, 0, len(f.exclude))
		for _, s := range f.exclude {
			c, err := enc.ComponentFromStr(s)
			if err != nil {
				return nil, fmt.Errorf("invalid exclude component (%s): %w", s, err)
			}
			comps = append(comps, c)
		}
		slices.SortFunc(comps, enc.Component.Compare)
		interest.Exclude = &ndn.Exclude{}
		for _, c := range comps {
			interest.Exclude.AppendComponent(c)
		}
	}
	return interest, nil
}

// Cmds returns the repository subcommands.
func Cmds() []*cobra.Command {
	return []*cobra.Command{CmdRepo, cmdPut(), cmdGet(), cmdDelete(), cmdList(), cmdStat()}
}

func readConfig(file string) *Config {
	config := struct {
		Repo *Config `json:"repo"`
	}{
		Repo: DefaultConfig(),
	}
	toolutils.ReadYaml(&config, file)

	if err := config.Repo.Parse(); err != nil {
		log.Fatal(nil, "Configuration error", "err", err)
	}
	log.Default().SetLevel(config.Repo.LogLevelL)
	return config.Repo
}

func run(cmd *cobra.Command, args []string) {
	repo := NewRepo(readConfig(args[0]))
	err := repo.Start()
	if err != nil {
		log.Fatal(nil, "Failed to start repo", "err", err)
	}
	defer repo.Stop()

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	<-sigChannel
}

// withRepo runs fn against a repository opened for a single command.
// Periodic compaction is not started.
func withRepo(file string, fn func(r *Repo) error) {
	config := readConfig(file)
	config.CompactIntervalD = 0

	repo := NewRepo(config)
	if err := repo.Start(); err != nil {
		log.Fatal(nil, "Failed to open repo", "err", err)
	}
	err := fn(repo)
	if serr := repo.Stop(); err == nil {
		err = serr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdPut() *cobra.Command {
	var content, hmacKey, keyName string
	cmd := &cobra.Command{
		Use:     "put CONFIG-FILE NAME",
		Short:   "Sign and store a Data packet",
		GroupID: "tools",
		Args:    cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			name, err := enc.NameFromStr(args[1])
			if err != nil {
				log.Fatal(nil, "Invalid name", "name", args[1], "err", err)
			}

			signer := ndn.NewSha256Signer()
			if hmacKey != "" {
				key, err := enc.NameFromStr(keyName)
				if err != nil || len(key) == 0 {
					log.Fatal(nil, "An HMAC key needs a valid --key-name", "name", keyName)
				}
				signer = ndn.NewHmacSigner(key, []byte(hmacKey))
			}

			data := &ndn.Data{Name: name, Content: []byte(content)}
			wire, err := data.Encode(signer)
			if err != nil {
				log.Fatal(nil, "Failed to encode data", "err", err)
			}

			withRepo(args[0], func(r *Repo) error {
				ok, err := r.Insert(wire)
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", utils.If(ok, "stored", "exists"), data.FullName())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Content of the packet")
	cmd.Flags().StringVar(&hmacKey, "hmac-key", "", "Sign with HMAC-SHA256 using this shared key")
	cmd.Flags().StringVar(&keyName, "key-name", "", "Key name for the HMAC signature")
	return cmd
}

func cmdGet() *cobra.Command {
	sel := &selectorFlags{}
	cmd := &cobra.Command{
		Use:     "get CONFIG-FILE NAME",
		Short:   "Retrieve the Data packet an Interest selects",
		GroupID: "tools",
		Args:    cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			interest, err := sel.interest(args[1])
			if err != nil {
				log.Fatal(nil, "Invalid interest", "err", err)
			}

			withRepo(args[0], func(r *Repo) error {
				wire, err := r.Read(interest)
				if err != nil {
					return err
				}
				if wire == nil {
					return fmt.Errorf("no data for %s", interest)
				}
				data, err := ndn.ParseData(wire)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%s\n", data.FullName())
				_, err = os.Stdout.Write(data.Content)
				return err
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func cmdDelete() *cobra.Command {
	sel := &selectorFlags{}
	var match bool
	cmd := &cobra.Command{
		Use:     "delete CONFIG-FILE NAME",
		Short:   "Delete stored Data packets under a name",
		GroupID: "tools",
		Args:    cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			interest, err := sel.interest(args[1])
			if err != nil {
				log.Fatal(nil, "Invalid interest", "err", err)
			}

			withRepo(args[0], func(r *Repo) (err error) {
				var n int
				if match {
					n, err = r.DeleteMatching(interest)
				} else {
					n, err = r.Delete(interest.Name)
				}
				fmt.Printf("deleted %d\n", n)
				return err
			})
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&match, "match", false, "Only delete packets matching the selectors")
	return cmd
}

func cmdList() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "ls CONFIG-FILE [PREFIX]",
		Short:   "List stored Data packets",
		GroupID: "tools",
		Args:    cobra.RangeArgs(1, 2),
		Run: func(_ *cobra.Command, args []string) {
			prefix := enc.Name{}
			if len(args) > 1 {
				var err error
				if prefix, err = enc.NameFromStr(args[1]); err != nil {
					log.Fatal(nil, "Invalid prefix", "prefix", args[1], "err", err)
				}
			}

			withRepo(args[0], func(r *Repo) error {
				for m, s := range r.List(prefix, all) {
					if all {
						fmt.Printf("%-10s %d %s\n", s, m.ID, m.Name)
					} else {
						fmt.Printf("%d %s\n", m.ID, m.Name)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include tombstones")
	return cmd
}

func cmdStat() *cobra.Command {
	return &cobra.Command{
		Use:     "stat CONFIG-FILE",
		Short:   "Print repository statistics",
		GroupID: "tools",
		Args:    cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			withRepo(args[0], func(r *Repo) error {
				st := r.Stats()
				p := toolutils.StatusPrinter{File: os.Stdout, Padding: 12}
				fmt.Println("Repository Statistics:")
				p.Print("name", r.config.NameN)
				p.Print("backend", r.config.StorageBackend)
				p.Print("live", st.Live)
				p.Print("physical", st.Physical)
				p.Print("capacity", st.Capacity)
				p.Print("fingerprint", fmt.Sprintf("%016x", st.Fingerprint))
				return nil
			})
		},
	}
}
