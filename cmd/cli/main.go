package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/wadjakorntonsri/shortly/pkg/adapters/repository"
	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
	"github.com/wadjakorntonsri/shortly/pkg/core/services"
)

const usage = "expected 'export', 'import' or 'stats' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "write to file instead of stdout")
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON document to import")
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.Load()
	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()
	store := services.NewStateStore(repo)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		err = doExport(ctx, store, *exportOut)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		err = doImport(ctx, store, *importFile)
	case "stats":
		statsCmd.Parse(os.Args[2:])
		err = doStats(ctx, store, os.Stdout)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// doExport dumps the whole document, users and links alike.
func doExport(ctx context.Context, store *services.StateStore, out string) error {
	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return store.Read(ctx, func(st *domain.State) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(st)
	})
}

// doImport merges a previously exported document. Users whose id or
// username already exists and links whose id or code already exists are
// skipped so an import never overwrites live data. Links that break the
// record invariants are rejected.
func doImport(ctx context.Context, store *services.StateStore, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var incoming domain.State
	if err := json.NewDecoder(file).Decode(&incoming); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}

	users, links := 0, 0
	err = store.Mutate(ctx, func(st *domain.State) error {
		userIDs := map[string]bool{}
		for _, u := range st.Users {
			userIDs[u.ID] = true
		}
		for _, u := range incoming.Users {
			switch {
			case u.ID == "" || u.Username == "":
				log.Printf("Skipping incomplete user: %q", u.Username)
				continue
			case userIDs[u.ID]:
				log.Printf("Skipping existing user id: %s", u.ID)
				continue
			case st.FindUser(u.Username) >= 0:
				log.Printf("Skipping existing user: %s", u.Username)
				continue
			}
			st.Users = append(st.Users, u)
			userIDs[u.ID] = true
			users++
		}

		linkIDs := map[string]bool{}
		for _, l := range st.Shorts {
			linkIDs[l.ID] = true
		}
		for _, l := range incoming.Shorts {
			if err := checkLink(l); err != nil {
				log.Printf("Rejecting link %q: %v", l.Code, err)
				continue
			}
			if linkIDs[l.ID] {
				log.Printf("Skipping existing link id: %s", l.ID)
				continue
			}
			if st.FindByCode(l.Code) >= 0 {
				log.Printf("Skipping existing code: %s", l.Code)
				continue
			}
			st.Shorts = append(st.Shorts, l)
			linkIDs[l.ID] = true
			links++
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Imported %d users and %d links", users, links)
	return nil
}

// checkLink enforces what CreateLink guarantees for every record.
func checkLink(l domain.LinkRecord) error {
	switch {
	case l.ID == "" || l.Code == "" || l.OwnerID == "" || l.TargetURL == "":
		return errors.New("missing field")
	case l.ExpiresAt <= l.CreatedAt:
		return errors.New("expiresAt must be after createdAt")
	case l.Clicks < 0:
		return errors.New("negative clicks")
	}
	return nil
}

type ownerStats struct {
	links  int
	clicks int64
}

func doStats(ctx context.Context, store *services.StateStore, w io.Writer) error {
	return store.Read(ctx, func(st *domain.State) error {
		byOwner := map[string]*ownerStats{}
		var total int64
		for _, l := range st.Shorts {
			s, ok := byOwner[l.OwnerID]
			if !ok {
				s = &ownerStats{}
				byOwner[l.OwnerID] = s
			}
			s.links++
			s.clicks += l.Clicks
			total += l.Clicks
		}

		names := map[string]string{}
		for _, u := range st.Users {
			names[u.ID] = u.Username
		}
		owners := make([]string, 0, len(byOwner))
		for id := range byOwner {
			owners = append(owners, id)
		}
		sort.Strings(owners)

		fmt.Fprintf(w, "users: %d  links: %d  clicks: %d\n", len(st.Users), len(st.Shorts), total)
		for _, id := range owners {
			name := names[id]
			if name == "" {
				name = id
			}
			fmt.Fprintf(w, "  %-32s %5d links %8d clicks\n", name, byOwner[id].links, byOwner[id].clicks)
		}
		return nil
	})
}
