package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

func TestLoadSample(t *testing.T) {
	l, err := Load(filepath.Join("testdata", "sample.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.Accounts) != 4 || len(l.Bills()) != 4 || len(l.Income()) != 2 {
		t.Fatalf("counts = %d accounts, %d bills, %d income", len(l.Accounts), len(l.Bills()), len(l.Income()))
	}
	if got := l.Items[1].ID; got != "phone" {
		t.Errorf("derived id = %q, want phone", got)
	}
	if l.Accounts[1].Spendable {
		t.Error("savings marked spendable despite spendable = false")
	}
	debts := l.PayoffDebts()
	if len(debts) != 2 {
		t.Fatalf("derived debts = %d, want 2", len(debts))
	}
	if debts[0].Balance != 185040 {
		t.Errorf("visa balance = %d, want 185040", debts[0].Balance)
	}
}

const good = `
[[accounts]]
id = "chk"
name = "Checking"
type = "checking"
balance = "1,250.75"

[[accounts]]
name = "Visa Card"
type = "credit"
balance = 900
credit_limit = 3000
apr = 19.99
payment_due_day = 12

[[bills]]
name = "Rent"
amount = -1500
frequency = "monthly"
anchor = 2025-03-01

[[bills]]
name = "Gym"
amount = 40
frequency = "weekly"
anchor = "2025-03-03"
account = "visa-card"
active = false

[[income]]
name = "Paycheck"
amount = 2100.5
frequency = "biweekly"
anchor = 2025-03-07
`

func TestParse(t *testing.T) {
	l, err := Parse(good)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(l.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(l.Accounts))
	}
	chk, visa := l.Accounts[0], l.Accounts[1]
	if chk.Balance != 125075 || !chk.Spendable || chk.Currency != "USD" {
		t.Errorf("checking = %+v", chk)
	}
	if visa.ID != "visa-card" || visa.Type != model.CreditCard || visa.Spendable {
		t.Errorf("visa = %+v", visa)
	}
	if visa.APR.String() != "19.99" || visa.CreditLimit != money.FromDollars(3000) {
		t.Errorf("visa APR/limit = %s / %d", visa.APR, visa.CreditLimit)
	}

	bills, income := l.Bills(), l.Income()
	if len(bills) != 2 || len(income) != 1 {
		t.Fatalf("bills=%d income=%d", len(bills), len(income))
	}
	if bills[0].Amount != money.FromDollars(1500) || bills[0].Effect() != -money.FromDollars(1500) {
		t.Errorf("rent amount = %d effect = %d", bills[0].Amount, bills[0].Effect())
	}
	if bills[1].Active || bills[1].AccountID != "visa-card" {
		t.Errorf("gym = %+v", bills[1])
	}
	if got := bills[0].Anchor.Format("2006-01-02"); got != "2025-03-01" {
		t.Errorf("rent anchor = %s", got)
	}
	if income[0].Amount != 210050 || income[0].Frequency != model.Biweekly {
		t.Errorf("paycheck = %+v", income[0])
	}

	debts := l.PayoffDebts()
	if len(debts) != 1 || debts[0].ID != "visa-card" || debts[0].Balance != money.FromDollars(900) {
		t.Errorf("derived debts = %+v", debts)
	}
}

func TestParseReportsEveryProblem(t *testing.T) {
	bad := `
[[accounts]]
id = "a"
type = "brokerage"

[[accounts]]
id = "b"
type = "credit_card"
payment_due_day = 31

[[bills]]
id = "x"
amount = 10
frequency = "hourly"
anchor = 2025-01-01

[[bills]]
id = "y"
amount = 10
frequency = "monthly"
anchor = 2025-01-01
account = "ghost"
`
	_, err := Parse(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"brokerage", "payment_due_day 31", "hourly", "ghost"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}

func TestDuplicateIDs(t *testing.T) {
	_, err := Parse(`
[[accounts]]
id = "dup"
type = "checking"
balance = 1

[[bills]]
id = "dup"
amount = 1
frequency = "monthly"
anchor = 2025-01-01
`)
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Errorf("error = %v, want duplicate id", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	l, err := Parse(good)
	if err != nil {
		t.Fatal(err)
	}
	l.Debts = []model.CreditCardDebt{{ID: "loan", Name: "Loan", Balance: 50000, APR: l.Accounts[1].APR}}

	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("re-Parse: %v\n%s", err, buf.String())
	}
	if len(back.Accounts) != 2 || len(back.Items) != 3 || len(back.Debts) != 1 {
		t.Fatalf("round trip counts = %d/%d/%d", len(back.Accounts), len(back.Items), len(back.Debts))
	}
	if back.Accounts[0].Balance != l.Accounts[0].Balance || !back.Items[2].Anchor.Equal(l.Items[2].Anchor) {
		t.Errorf("round trip mismatch:\n%s", buf.String())
	}
	if back.Debts[0].Balance != 50000 {
		t.Errorf("debt balance = %d", back.Debts[0].Balance)
	}
}

func TestLoadDirectoryMerges(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("10-accounts.toml", "[[accounts]]\nid = \"chk\"\ntype = \"checking\"\nbalance = 100\n")
	write("20-bills.toml", "[[bills]]\nid = \"rent\"\namount = 50\nfrequency = \"monthly\"\nanchor = 2025-01-01\naccount = \"chk\"\n")
	write(".hidden.toml", "garbage = [")
	write("notes.txt", "ignored")

	l, err := Load(dir)
	if err != nil {
		t.Fatalf("Load dir: %v", err)
	}
	if len(l.Accounts) != 1 || len(l.Items) != 1 {
		t.Errorf("merged = %d accounts, %d items", len(l.Accounts), len(l.Items))
	}
}

func TestEmbeddedSampleParses(t *testing.T) {
	l, err := Parse(Sample)
	if err != nil {
		t.Fatalf("Parse(Sample): %v", err)
	}
	if len(l.CreditCards()) != 2 {
		t.Errorf("credit cards = %d, want 2", len(l.CreditCards()))
	}
}

func TestWriteSampleKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.toml")

	written, err := WriteSample(path)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("first WriteSample did not write")
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("written sample does not load: %v", err)
	}

	if err := os.WriteFile(path, []byte("# mine\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	written, err = WriteSample(path)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Fatal("WriteSample overwrote an existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Fatalf("existing file changed: %q", data)
	}
}
