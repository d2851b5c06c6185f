package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

func renderView(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLayoutMarksActiveTab(t *testing.T) {
	body := renderView(t, layout(layoutView{
		Title:   "Graphs",
		Session: &Session{Username: "<b>ana</b>", Role: RoleManager},
		Active:  tabGraphs,
	}))
	if !strings.Contains(body, `<a href="/graphs" class="active"`) {
		t.Fatalf("active tab not marked: %s", body)
	}
	if strings.Count(body, `class="active"`) != 1 {
		t.Fatalf("expected one active tab: %s", body)
	}
	if strings.Contains(body, "<b>ana</b>") || !strings.Contains(body, "&lt;b&gt;ana&lt;/b&gt; (manager_user)") {
		t.Fatalf("username not escaped: %s", body)
	}
	if !strings.Contains(body, "<title>Graphs | LoL Worlds</title>") {
		t.Fatalf("title missing: %s", body)
	}
}

func TestLayoutWithoutSessionHasNoNav(t *testing.T) {
	body := renderView(t, layout(layoutView{Title: "Login"}))
	if strings.Contains(body, "<nav>") || strings.Contains(body, "/logout") {
		t.Fatalf("anonymous layout shows navigation: %s", body)
	}
}

func TestLoginPageSelectsRole(t *testing.T) {
	body := renderView(t, loginPage(loginView{Username: `a"b`, Role: RoleAdmin, Error: "Invalid credentials"}))
	if !strings.Contains(body, `<option value="admin_user" selected>`) {
		t.Fatalf("admin not selected: %s", body)
	}
	if !strings.Contains(body, `value="a&#34;b"`) {
		t.Fatalf("username attribute not escaped: %s", body)
	}
	if !strings.Contains(body, `<p class="error" role="alert">Invalid credentials</p>`) {
		t.Fatalf("error block missing: %s", body)
	}
}

func TestResultTableEscapesCells(t *testing.T) {
	body := renderView(t, resultTable(storage.Table{Columns: []string{"team"}, Rows: [][]string{{"<script>"}}}))
	if strings.Contains(body, "<script>") || !strings.Contains(body, "<td>&lt;script&gt;</td>") {
		t.Fatalf("cell not escaped: %s", body)
	}
	if body := renderView(t, resultTable(storage.Table{Columns: []string{"team"}})); !strings.Contains(body, "No rows.") {
		t.Fatalf("empty table marker missing: %s", body)
	}
}

func TestPlayerStatsPageNextLinkKeepsQuery(t *testing.T) {
	view := playerStatsView{
		Filter:   `kills > 5`,
		PageSize: 2,
		Page: storage.PlayerStatPage{
			Stats:         []storage.PlayerStatView{{PlayerName: "Faker"}},
			NextPageToken: "abc",
		},
	}
	if got, want := nextPageURL(view), "/players?filter=kills+%3E+5&page_size=2&page_token=abc"; got != want {
		t.Fatalf("next page url = %q, want %q", got, want)
	}
	body := renderView(t, playerStatsPage(view))
	if !strings.Contains(body, `href="/players?filter=kills+%3E+5&amp;page_size=2&amp;page_token=abc"`) {
		t.Fatalf("next link missing: %s", body)
	}
	if !strings.Contains(body, `value="kills &gt; 5"`) {
		t.Fatalf("filter value not kept: %s", body)
	}
}

func TestModifyPageDisablesFormForRegular(t *testing.T) {
	body := renderView(t, modifyPage(modifyView{Role: RoleRegular}))
	if strings.Count(body, " disabled") != 2 {
		t.Fatalf("expected disabled textarea and button: %s", body)
	}
	body = renderView(t, modifyPage(modifyView{Role: RoleAdmin}))
	if strings.Contains(body, " disabled") || !strings.Contains(body, "INSERT, UPDATE and DELETE statements are allowed.") {
		t.Fatalf("admin form: %s", body)
	}
}
