package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/breachscan/tender-system/internal/client"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

var (
	version   string
	buildDate string
)

const pageSize = 20

// shell holds the REPL state: the SDK clients plus the working filter
// criteria that fetch and scan commands operate on.
type shell struct {
	session   *client.SessionStore
	tenders   *client.TenderClient
	elevation *client.ElevationClient
	analysis  *client.AnalysisClient

	criteria filter.Criteria
}

// repl runs the interactive loop for reviewing tender breach data.
func repl(s *shell) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("tenderctl> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		s.dispatch(ctx, args)
		cancel()

		if args[0] == "exit" {
			return
		}
	}
}

func (s *shell) dispatch(ctx context.Context, args []string) {
	switch args[0] {
	case "help":
		fmt.Println("Available commands:")
		fmt.Println("  login <user> <pass>   register <user> <pass>   logout   whoami")
		fmt.Println("  passwd <old> <new>")
		fmt.Println("  set <field> <value>   criteria   reset    (set latest true serves stored results)")
		fmt.Println("  scan   fetch   page <n>   analyze <id>")
		fmt.Println("  request-admin   requests   approve <user>   reject <user>")
		fmt.Println("  exit")
	case "login":
		if len(args) < 3 {
			fmt.Println("Usage: login <user> <pass>")
			return
		}
		if err := s.session.Login(ctx, args[1], args[2]); err != nil {
			fmt.Println(err)
			return
		}
		id := s.session.Current()
		fmt.Printf("Logged in as %s (%s)\n", id.Username, id.Role)
	case "register":
		if len(args) < 3 {
			fmt.Println("Usage: register <user> <pass>")
			return
		}
		if err := s.session.Register(ctx, args[1], args[2]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Registered. Use 'login' to sign in.")
	case "logout":
		s.session.Logout(ctx)
		fmt.Println("Logged out")
	case "whoami":
		id := s.session.Current()
		if id == nil {
			fmt.Println("Not logged in")
			return
		}
		fmt.Printf("%s  role=%s  pending-admin-request=%v\n", id.Username, id.Role, id.HasPendingAdminRequest)
	case "passwd":
		if len(args) < 3 {
			fmt.Println("Usage: passwd <old> <new>")
			return
		}
		if err := s.session.ChangePassword(ctx, args[1], args[2]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Password changed")
	case "set":
		if len(args) < 3 {
			fmt.Println("Usage: set <field> <value>")
			return
		}
		if err := s.setCriteria(args[1], strings.Join(args[2:], " ")); err != nil {
			fmt.Println(err)
		}
	case "criteria":
		fmt.Println(s.criteria.String())
	case "reset":
		s.criteria = filter.Default()
		fmt.Println("Criteria reset to defaults")
	case "scan":
		if err := s.tenders.TriggerScan(ctx, s.criteria); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Scan complete")
	case "fetch":
		records, err := s.tenders.Fetch(ctx, s.criteria)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%d records\n", len(records))
		printRecords(s.tenders.Page(1, pageSize))
	case "page":
		if len(args) < 2 {
			fmt.Println("Usage: page <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("page number must be an integer")
			return
		}
		printRecords(s.tenders.Page(n, pageSize))
	case "analyze":
		if len(args) < 2 {
			fmt.Println("Usage: analyze <id>")
			return
		}
		res, err := s.analysis.Analyze(ctx, args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		source := "fresh"
		if res.Cached {
			source = "cached"
		}
		fmt.Printf("[%s]\n%s\n", source, res.Analysis)
	case "request-admin":
		if err := s.elevation.Submit(ctx); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Admin request submitted")
	case "requests":
		requests, err := s.elevation.List(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, r := range requests {
			fmt.Printf("%-20s %-10s %s\n", r.Username, r.Status, r.CreatedAt.Format(time.RFC3339))
		}
	case "approve", "reject":
		if len(args) < 2 {
			fmt.Printf("Usage: %s <user>\n", args[0])
			return
		}
		if err := s.elevation.Decide(ctx, args[1], args[0] == "approve"); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Request %sd\n", args[0])
	case "exit":
		fmt.Println("Bye")
	default:
		fmt.Println("Unknown command. Type 'help' for a list of commands.")
	}
}

// setCriteria applies a single filter edit through the normalizing setters,
// so paired bounds stay consistent after every keystroke-level change.
func (s *shell) setCriteria(field, value string) error {
	today := time.Now()
	switch field {
	case "pageStart":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("pageStart must be an integer")
		}
		s.criteria.SetPageStart(n)
	case "pageEnd":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("pageEnd must be an integer")
		}
		s.criteria.SetPageEnd(n)
	case "priceFrom":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("priceFrom must be a number")
		}
		s.criteria.SetPriceFrom(f)
	case "priceTo":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("priceTo must be a number")
		}
		s.criteria.SetPriceTo(f)
	case "search":
		s.criteria.SearchString = value
	case "sortBy":
		n, err := strconv.Atoi(value)
		if err != nil || !domain.ValidSortKey(domain.SortKey(n)) {
			return fmt.Errorf("sortBy must be 1..4 (update date, publish date, price, relevance)")
		}
		s.criteria.SortBy = domain.SortKey(n)
	case "ascending":
		s.criteria.SortAscending = value == "true" || value == "on"
	case "latest":
		s.criteria.Latest = value == "true" || value == "on"
	case "grounds":
		var grounds []int
		for _, part := range strings.Split(value, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < filter.GroundMin || n > filter.GroundMax {
				return fmt.Errorf("grounds must be a comma-separated list of %d..%d", filter.GroundMin, filter.GroundMax)
			}
			grounds = append(grounds, n)
		}
		s.criteria.TerminationGrounds = grounds
	case "contractDateFrom", "contractDateTo", "publishDateFrom", "publishDateTo",
		"updateDateFrom", "updateDateTo", "executionDateStart", "executionDateEnd":
		return s.criteria.SetDate(filter.DateFieldFromName(field), value, today)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func printRecords(records []domain.TenderRecord) {
	for _, r := range records {
		fmt.Printf("%-36s %12s  %-10s  %s\n", r.ID, r.Price, r.UpdateDate, r.Title)
	}
}

func main() {
	var (
		baseURL string
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("tenderctl\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	api, err := client.New(baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	session := client.NewSessionStore(api)

	s := &shell{
		session:   session,
		tenders:   client.NewTenderClient(api, session),
		elevation: client.NewElevationClient(api, session),
		analysis:  client.NewAnalysisClient(api, session),
		criteria:  filter.Default(),
	}
	repl(s)
}
