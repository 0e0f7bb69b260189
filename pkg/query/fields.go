package query

import "fmt"

// Fields maps human-readable column labels to UniProtKB API field names.
// The fields parameter of a search request selects which columns the API
// returns; labels here match the column headers UniProt uses in TSV output.
var Fields = map[string]string{
	"Entry":                      "accession",
	"Entry Name":                 "id",
	"Gene Names":                 "gene_names",
	"Gene Names (primary)":       "gene_primary",
	"Gene Names (synonym)":       "gene_synonym",
	"Gene Names (ordered locus)": "gene_oln",
	"Gene Names (ORF)":           "gene_orf",
	"Organism":                   "organism_name",
	"Organism ID":                "organism_id",
	"Protein names":              "protein_name",
	"Proteomes":                  "xref_proteomes",
	"Taxonomic lineage":          "lineage",
	"Taxonomic lineage (IDs)":    "lineage_ids",
	"Virus hosts":                "virus_hosts",
}

// FieldNames resolves display labels to API field names.
// Unknown labels are an error so typos surface early instead of silently
// dropping columns from the result.
func FieldNames(labels ...string) ([]string, error) {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		name, ok := Fields[label]
		if !ok {
			return nil, fmt.Errorf("unknown field label %q", label)
		}
		names = append(names, name)
	}
	return names, nil
}
