package source

import (
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestDemo_Deterministic(t *testing.T) {
	a := Demo(DemoSeed, DemoPeriods, DemoStart)
	b := Demo(DemoSeed, DemoPeriods, DemoStart)
	for i := range a.Records {
		for _, f := range model.NumericFields {
			va, _ := a.Records[i].Get(f)
			vb, _ := b.Records[i].Get(f)
			if va != vb {
				t.Fatalf("row %d field %s differs: %v vs %v", i, f, va, vb)
			}
		}
	}

	c := Demo(DemoSeed+1, DemoPeriods, DemoStart)
	if a.Sum(model.FieldRevenue) == c.Sum(model.FieldRevenue) {
		t.Error("different seeds produced identical revenue")
	}
}

func TestDemo_Ranges(t *testing.T) {
	tbl := Demo(42, 30, DemoStart)
	if tbl.Len() != 30 || !tbl.Demo {
		t.Fatalf("Len = %d Demo = %v, want 30 true", tbl.Len(), tbl.Demo)
	}
	for i, r := range tbl.Records {
		rev, _ := r.Get(model.FieldRevenue)
		exp, _ := r.Get(model.FieldExpenses)
		indRev, _ := r.Get(model.FieldIndustryRevenue)
		indExp, _ := r.Get(model.FieldIndustryExpenses)
		churn, _ := r.Get(model.FieldChurnRate)
		cust, _ := r.Get(model.FieldCustomers)

		if rev < 90000 || rev >= 130000 {
			t.Errorf("row %d revenue %v out of range", i, rev)
		}
		if exp < 50000 || exp >= 90000 {
			t.Errorf("row %d expenses %v out of range", i, exp)
		}
		if indRev > rev*0.95+1 || indRev < rev*0.85-1 {
			t.Errorf("row %d industry revenue %v not within 85-95%% of %v", i, indRev, rev)
		}
		if indExp < exp*1.07-1 || indExp > exp*1.14+1 {
			t.Errorf("row %d industry expenses %v not within 107-114%% of %v", i, indExp, exp)
		}
		if churn < 0.02 || churn > 0.08 {
			t.Errorf("row %d churn %v out of range", i, churn)
		}
		if cust < 1000 || cust >= 6000 {
			t.Errorf("row %d customers %v out of range", i, cust)
		}
		if want := DemoStart.AddDate(0, 0, i); !r.Date.Equal(want) {
			t.Errorf("row %d date = %v, want %v", i, r.Date, want)
		}
	}
}

func TestDemo_Defaults(t *testing.T) {
	tbl := Demo(1, 0, DemoStart)
	if tbl.Len() != DemoPeriods {
		t.Errorf("Len = %d, want %d", tbl.Len(), DemoPeriods)
	}
	if len(tbl.Mapping) != len(DemoHeaders) {
		t.Errorf("mapping covers %d columns, want %d", len(tbl.Mapping), len(DemoHeaders))
	}
}
