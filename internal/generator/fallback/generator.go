// Package fallback provides the deterministic template generator used when
// no model is configured or the model path has failed. It never errors.
package fallback

import (
	"context"
	"fmt"
	"strings"
)

// Disclaimer is appended to every fallback answer.
const Disclaimer = "**Disclaimer:** This information is for educational purposes only " +
	"and does not constitute legal advice."

// legalArea maps query keywords to an area of law and a short guidance block.
type legalArea struct {
	name     string
	keywords []string
	guidance string
}

// Keyword buckets derived from the query, checked in order. A query can match
// several areas.
var legalAreas = []legalArea{
	{
		name:     "Contract Law",
		keywords: []string{"contract", "agreement", "breach"},
		guidance: "Under the Indian Contract Act, 1872, a breach of contract can lead to " +
			"compensation for actual loss (Sections 73 and 74); courts may also order " +
			"specific performance.",
	},
	{
		name:     "Property Law",
		keywords: []string{"property", "real estate", "inheritance", "land", "tenant", "eviction"},
		guidance: "Property transactions are governed by the Transfer of Property Act, 1882, " +
			"with mandatory registration under the Registration Act, 1908; tenancy and " +
			"real-estate projects fall under state rent laws and RERA, 2016.",
	},
	{
		name:     "Family Law",
		keywords: []string{"divorce", "marriage", "custody", "maintenance", "alimony"},
		guidance: "Grounds for divorce and custody vary by personal law (Hindu Marriage Act, " +
			"1955, Special Marriage Act, 1954, and others); in custody matters the best " +
			"interest of the child is paramount.",
	},
	{
		name:     "Criminal Law",
		keywords: []string{"criminal", "theft", "murder", "bail", "arrest", "fir"},
		guidance: "Criminal offences and procedure are governed by the Indian Penal Code, 1860 " +
			"and the Criminal Procedure Code, 1973. Key rights include legal representation, " +
			"protection against self-incrimination, and bail in bailable offences.",
	},
	{
		name:     "Tort Law",
		keywords: []string{"accident", "liability", "negligence", "compensation"},
		guidance: "Claims for accidents and negligence rest on tort principles and statutes " +
			"such as the Motor Vehicles Act, 1988; compensation is assessed on actual loss " +
			"and degree of fault.",
	},
	{
		name:     "Constitutional Law",
		keywords: []string{"constitution", "fundamental", "writ", "article"},
		guidance: "Fundamental rights are enforceable through writ petitions under Articles 32 " +
			"and 226 of the Constitution of India.",
	},
}

// Generator is the deterministic, rule-based answer strategy.
type Generator struct{}

// NewGenerator creates the fallback generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate composes a templated answer from keyword matching against the
// query plus verbatim inclusion of the formatted precedent context.
func (g *Generator) Generate(_ context.Context, query, contextBlock string) (string, error) {
	areas := matchAreas(query)

	var b strings.Builder
	fmt.Fprintf(&b, "**Legal Analysis for: %s**\n\n", query)

	if len(areas) > 0 {
		names := make([]string, len(areas))
		for i, a := range areas {
			names[i] = a.name
		}
		fmt.Fprintf(&b, "**Area of Law:** %s\n\n", strings.Join(names, ", "))
		for _, a := range areas {
			b.WriteString(a.guidance)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("**Based on Available Legal Precedents:**\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n")

	b.WriteString("**Important Note:** This analysis is based on available case precedents. " +
		"For legal advice tailored to your situation, please consult a qualified attorney.\n\n")
	b.WriteString(Disclaimer)

	return b.String(), nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "fallback"
}

func matchAreas(query string) []legalArea {
	lower := strings.ToLower(query)

	var matched []legalArea
	for _, area := range legalAreas {
		for _, kw := range area.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, area)
				break
			}
		}
	}
	return matched
}
