package query

import (
	"net/url"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	req := New("insulin")

	if req.Query() != "insulin" {
		t.Errorf("Query() = %q, want %q", req.Query(), "insulin")
	}
	if req.Format() != DefaultFormat {
		t.Errorf("Format() = %q, want %q", req.Format(), DefaultFormat)
	}
	if req.Size() != DefaultSize {
		t.Errorf("Size() = %d, want %d", req.Size(), DefaultSize)
	}
	if len(req.Extra()) != 0 {
		t.Errorf("Extra() = %v, want empty", req.Extra())
	}
}

func TestNew_Options(t *testing.T) {
	req := New("insulin",
		WithFormat("json"),
		WithSize(25),
		WithParam("fields", "accession,id"),
	)

	if req.Format() != "json" {
		t.Errorf("Format() = %q, want %q", req.Format(), "json")
	}
	if req.Size() != 25 {
		t.Errorf("Size() = %d, want 25", req.Size())
	}
	if req.Extra()["fields"] != "accession,id" {
		t.Errorf("Extra()[fields] = %q, want %q", req.Extra()["fields"], "accession,id")
	}
}

func TestWithParam_ReservedKeys(t *testing.T) {
	req := New("insulin",
		WithParam("query", "override"),
		WithParam("format", "override"),
		WithParam("size", "override"),
	)

	if req.Query() != "insulin" {
		t.Errorf("Query() = %q, reserved key must not override", req.Query())
	}
	if len(req.Extra()) != 0 {
		t.Errorf("Extra() = %v, reserved keys must not be stored", req.Extra())
	}
}

func TestWithFields(t *testing.T) {
	req := New("insulin", WithFields("accession", "id", "organism_name"))

	if got := req.Extra()["fields"]; got != "accession,id,organism_name" {
		t.Errorf("fields param = %q, want %q", got, "accession,id,organism_name")
	}
}

func TestRequest_Extra_Copy(t *testing.T) {
	req := New("insulin", WithParam("fields", "accession"))

	extra := req.Extra()
	extra["fields"] = "mutated"

	if req.Extra()["fields"] != "accession" {
		t.Error("mutating the returned map must not affect the request")
	}
}

func TestRequest_URL(t *testing.T) {
	req := New("(organism_id:10090) AND (mass:[0 TO 5000])",
		WithSize(2),
		WithParam("fields", "accession,id"),
	)

	rawURL, err := req.URL("https://rest.uniprot.org/uniprotkb/search")
	if err != nil {
		t.Fatalf("URL() failed: %v", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("result is not a valid URL: %v", err)
	}

	values := u.Query()
	if values.Get("query") != "(organism_id:10090) AND (mass:[0 TO 5000])" {
		t.Errorf("query param = %q", values.Get("query"))
	}
	if values.Get("format") != "tsv" {
		t.Errorf("format param = %q, want tsv", values.Get("format"))
	}
	if values.Get("size") != "2" {
		t.Errorf("size param = %q, want 2", values.Get("size"))
	}
	if values.Get("fields") != "accession,id" {
		t.Errorf("fields param = %q", values.Get("fields"))
	}
}

func TestRequest_URL_DefaultBase(t *testing.T) {
	req := New("insulin")

	rawURL, err := req.URL("")
	if err != nil {
		t.Fatalf("URL() failed: %v", err)
	}
	if !strings.HasPrefix(rawURL, DefaultBaseURL) {
		t.Errorf("URL = %q, want prefix %q", rawURL, DefaultBaseURL)
	}
}

func TestRequest_URL_Deterministic(t *testing.T) {
	req := New("insulin",
		WithParam("fields", "accession"),
		WithParam("includeIsoform", "false"),
	)

	first, err := req.URL("")
	if err != nil {
		t.Fatalf("URL() failed: %v", err)
	}
	second, err := req.URL("")
	if err != nil {
		t.Fatalf("URL() failed: %v", err)
	}
	if first != second {
		t.Errorf("URL not deterministic: %q vs %q", first, second)
	}
}

func TestParseURL_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "defaults",
			req:  New("insulin"),
		},
		{
			name: "demo query with brackets and spaces",
			req: New("(organism_id:10090) AND (mass:[0 TO 5000])",
				WithSize(2),
			),
		},
		{
			name: "custom format and fields",
			req: New("gene:BRCA1",
				WithFormat("json"),
				WithSize(100),
				WithParam("fields", "accession,gene_names"),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rawURL, err := tt.req.URL(DefaultBaseURL)
			if err != nil {
				t.Fatalf("URL() failed: %v", err)
			}

			parsed, err := ParseURL(rawURL)
			if err != nil {
				t.Fatalf("ParseURL() failed: %v", err)
			}

			if parsed.Query() != tt.req.Query() {
				t.Errorf("Query = %q, want %q", parsed.Query(), tt.req.Query())
			}
			if parsed.Format() != tt.req.Format() {
				t.Errorf("Format = %q, want %q", parsed.Format(), tt.req.Format())
			}
			if parsed.Size() != tt.req.Size() {
				t.Errorf("Size = %d, want %d", parsed.Size(), tt.req.Size())
			}
		})
	}
}

func TestParseURL_MissingQuery(t *testing.T) {
	_, err := ParseURL(DefaultBaseURL + "?format=tsv&size=500")
	if err == nil {
		t.Error("Expected error for URL without query parameter")
	}
}

func TestParseURL_InvalidSize(t *testing.T) {
	_, err := ParseURL(DefaultBaseURL + "?query=insulin&size=lots")
	if err == nil {
		t.Error("Expected error for unparsable size parameter")
	}
}

func TestFieldNames(t *testing.T) {
	names, err := FieldNames("Entry", "Organism", "Protein names")
	if err != nil {
		t.Fatalf("FieldNames() failed: %v", err)
	}

	want := []string{"accession", "organism_name", "protein_name"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestFieldNames_UnknownLabel(t *testing.T) {
	_, err := FieldNames("Entry", "No Such Column")
	if err == nil {
		t.Error("Expected error for unknown field label")
	}
}
