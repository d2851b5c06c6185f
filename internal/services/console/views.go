package console

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -f views.templ

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/lolworlds/internal/services/stats/report"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type tab string

const (
	tabQueries     tab = "queries"
	tabGraphs      tab = "graphs"
	tabPlayerStats tab = "players"
	tabModify      tab = "modify"
)

var tabs = []struct {
	id    tab
	path  string
	label string
}{
	{tabQueries, "/queries", "Queries"},
	{tabGraphs, "/graphs", "Graphs"},
	{tabPlayerStats, "/players", "Player stats"},
	{tabModify, "/modify", "Modify"},
}

const filterPlaceholder = `kills > 5 AND team_name = "T1"`

// numbers formats counters with grouping separators.
var numbers = message.NewPrinter(language.English)

func formatInt(n int64) string {
	return numbers.Sprintf("%d", n)
}

func pageTitle(title string) string {
	if title == "" {
		return "LoL Worlds"
	}
	return title + " | LoL Worlds"
}

type layoutView struct {
	Title   string
	Session *Session
	Active  tab
	Content templ.Component
}

type loginView struct {
	Username string
	Role     Role
	Error    string
}

type queriesView struct {
	Reports  []report.Report
	Selected string
	Table    *storage.Table
	Error    string
}

func reportPath(id string) string {
	return "/queries/" + url.PathEscape(id)
}

func reportTitle(reports []report.Report, id string) string {
	for _, r := range reports {
		if r.ID == id {
			return r.Title
		}
	}
	return ""
}

type graphsView struct {
	Chart templ.Component
	Error string
}

type playerStatsView struct {
	Filter   string
	PageSize int
	Page     storage.PlayerStatPage
	Error    string
}

func pageSizeValue(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// nextPageURL keeps the current filter and page size on the next page link.
func nextPageURL(v playerStatsView) string {
	if v.Page.NextPageToken == "" {
		return ""
	}
	query := url.Values{}
	if v.Filter != "" {
		query.Set("filter", v.Filter)
	}
	if v.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(v.PageSize))
	}
	query.Set("page_token", v.Page.NextPageToken)
	return "/players?" + query.Encode()
}

type modifyView struct {
	Role      Role
	Statement string
	Affected  *int64
	Error     string
}

func allowedStatements(role Role) string {
	if role.Allows(verbDelete) {
		return "INSERT, UPDATE and DELETE statements are allowed."
	}
	return "INSERT and UPDATE statements are allowed."
}
