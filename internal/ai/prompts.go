package ai

import (
	"fmt"
	"strings"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/rag"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/search"
)

const summarySystemPrompt = `You are a summarization assistant.
Compress the assistant response into 2-3 short sentences that sound natural when read aloud.
Keep the concrete facts, names and numbers. Drop markdown, bullet lists, URLs and code.
Never add information that is not in the response.`

// fallbackSummaryLimit bounds the spoken text when the summary model is down.
const fallbackSummaryLimit = 220

// fallbackSummary degrades to a clean prefix of the full answer.
func fallbackSummary(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= fallbackSummaryLimit {
		return content
	}

	cut := fallbackSummaryLimit
	for cut > fallbackSummaryLimit/2 && runes[cut] != ' ' {
		cut--
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}

func buildMemoryBlock(memories []memory.Memory) string {
	if len(memories) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Known facts about the user from earlier sessions:\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(m.Content))
	}
	b.WriteString("Use them when they are relevant, silently ignore them otherwise.")
	return b.String()
}

// --- tool result blocks ---

func formatNews(items []search.NewsResult) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("News results:\n")
	for _, n := range items {
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", n.Title, n.Source, n.Date, n.Snippet)
	}
	return strings.TrimSpace(b.String())
}

func formatFlights(items []search.FlightOption) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Flight options:\n")
	for _, f := range items {
		var legs []string
		for _, leg := range f.Legs {
			legs = append(legs, fmt.Sprintf("%s %s %s→%s (dep %s)",
				leg.Airline, leg.FlightNumber,
				leg.DepartureAirport.ID, leg.ArrivalAirport.ID,
				leg.DepartureAirport.Time))
		}
		stops := ""
		if n := len(f.Legs) - 1; n > 0 {
			stops = fmt.Sprintf(", %d stop(s)", n)
		}
		fmt.Fprintf(&b, "- $%d, %d min%s: %s\n", f.Price, f.TotalDuration, stops, strings.Join(legs, "; "))
	}
	return strings.TrimSpace(b.String())
}

func formatHotels(items []search.HotelResult) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Hotel options:\n")
	for _, h := range items {
		fmt.Fprintf(&b, "- %s (%s, %.1f★ from %d reviews), %s per night\n",
			h.Name, orDash(h.HotelClass), h.OverallRating, h.Reviews, orDash(h.RatePerNight.Lowest))
	}
	return strings.TrimSpace(b.String())
}

func formatJobs(items []search.JobResult) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Job listings:\n")
	for _, j := range items {
		fmt.Fprintf(&b, "- %s at %s (%s, %s)\n", j.Title, j.CompanyName, orDash(j.Location), orDash(j.Via))
	}
	return strings.TrimSpace(b.String())
}

func formatRecipes(items []search.RecipeResult) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recipe results:\n")
	for _, r := range items {
		fmt.Fprintf(&b, "- %s (%.1f★, %d reviews) — %s\n", r.Title, r.Rating, r.Reviews, orDash(r.Type))
	}
	return strings.TrimSpace(b.String())
}

func formatProducts(items []search.ProductResult) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Product listings:\n")
	for _, p := range items {
		fmt.Fprintf(&b, "- %s — %s at %s (%.1f★, %d reviews)\n",
			p.Title, orDash(p.Price), orDash(p.Source), p.Rating, p.Reviews)
	}
	return strings.TrimSpace(b.String())
}

func formatChunks(chunks []rag.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Document excerpts:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "[%s — part %d]\n%s\n\n", c.Title, c.Seq+1, c.Content)
	}
	return strings.TrimSpace(b.String())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}
