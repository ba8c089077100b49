// Package assist implements the AI-powered features: import field
// remapping, offer summaries, deal scoring, and reply drafting. Every
// feature degrades gracefully; callers treat errors as "assist
// unavailable", not as failures of the underlying operation.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/estatepulse/crm-cli/internal/model"
	"github.com/estatepulse/crm-cli/pkg/anthropic"
)

// Service wraps the Anthropic client with CRM-specific prompts.
type Service struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	batchSize int
	limiter   *rate.Limiter
}

// Config tunes the assist service.
type Config struct {
	Model      string
	MaxTokens  int64
	BatchSize  int // rows per remap request
	RatePerSec int
}

// New creates an assist Service.
func New(client anthropic.Client, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	return &Service{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

const remapSystemPrompt = `You are a data-mapping assistant for a real estate CRM.
You receive rows parsed from a spreadsheet export, as JSON objects keyed by the
source column headers. Rewrite each row so its keys use the CRM's canonical
field names for the target record type, copying cell values verbatim.

Canonical fields by record type:
- contacts: name, email, phone, tags, notes
- listings: address, seller_name, price, status, notes
- offers: address, buyer_name, price, down_payment, earnest_money, financing, inspection_period, contingencies, closing_date, status
- tasks: title, due_date, priority, status

Keep any column you cannot map under its original key. Never invent values,
never drop rows, never reorder rows. Respond with a JSON array only.`

// MapRows asks the model to rename row keys to canonical field names.
// Rows are sent in bounded chunks; output rows keep their input order.
// It satisfies the importer's Remapper interface.
func (s *Service) MapRows(ctx context.Context, rows []map[string]string, entity string) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(rows))
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		mapped, err := s.mapChunk(ctx, rows[start:end], entity)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped...)
	}
	return out, nil
}

func (s *Service) mapChunk(ctx context.Context, rows []map[string]string, entity string) ([]map[string]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "assist: rate limit wait")
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "assist: marshal rows")
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    remapSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Record type: %s\nRows:\n%s", entity, payload)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "assist: remap request")
	}
	resp.Usage.LogCost(s.model, "import_remap")

	var mapped []map[string]string
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &mapped); err != nil {
		return nil, eris.Wrap(err, "assist: parse remap response")
	}
	if len(mapped) != len(rows) {
		return nil, eris.Errorf("assist: remap returned %d rows, want %d", len(mapped), len(rows))
	}
	return mapped, nil
}

// SummarizeOffer produces a short plain-language summary of an offer
// for the negotiation view.
func (s *Service) SummarizeOffer(ctx context.Context, offer model.Offer, listing *model.Listing) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "assist: rate limit wait")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Buyer: %s\nOffer price: $%.0f\nDown payment: $%.0f\nEarnest money: $%.0f\nFinancing: %s\nInspection period: %d days\nStatus: %s\n",
		offer.BuyerName, offer.Price, offer.DownPayment, offer.EarnestMoney, offer.Financing, offer.InspectionPeriod, offer.Status)
	if len(offer.Contingencies) > 0 {
		fmt.Fprintf(&b, "Contingencies: %s\n", strings.Join(offer.Contingencies, ", "))
	}
	if listing != nil {
		fmt.Fprintf(&b, "Property: %s, listed at $%.0f, stage %s\n", listing.Address, listing.Price, listing.Status)
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    "You are an assistant for real estate agents. Summarize the offer below in 2-3 sentences for a busy agent. Note how the offer price compares to the listing price when both are present. Plain text only.",
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "assist: summarize offer")
	}
	resp.Usage.LogCost(s.model, "offer_summary")
	return strings.TrimSpace(resp.Text()), nil
}

// DealScore is the model's read on how likely a listing is to close.
type DealScore struct {
	Score       int      `json:"score"` // 0-100
	Explanation string   `json:"explanation"`
	Risks       []string `json:"risks"`
	Urgency     string   `json:"urgency"` // low, medium, high
}

// ScoreDeal rates a listing's likelihood of closing given its offers.
func (s *Service) ScoreDeal(ctx context.Context, listing model.Listing, offers []model.Offer) (*DealScore, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "assist: rate limit wait")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Listing: %s\nAsking price: $%.0f\nStage: %s\nOffers: %d\n",
		listing.Address, listing.Price, listing.Status, len(offers))
	for _, o := range offers {
		fmt.Fprintf(&b, "- %s offered $%.0f (%s, %s)\n", o.BuyerName, o.Price, o.Financing, o.Status)
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System: `You score real estate deals for likelihood of closing. Respond with JSON only:
{"score": 0-100, "explanation": "...", "risks": ["..."], "urgency": "low|medium|high"}`,
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "assist: score deal")
	}
	resp.Usage.LogCost(s.model, "deal_score")

	var score DealScore
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &score); err != nil {
		return nil, eris.Wrap(err, "assist: parse deal score")
	}
	if score.Score < 0 || score.Score > 100 {
		return nil, eris.Errorf("assist: deal score %d out of range", score.Score)
	}
	return &score, nil
}

// DraftReply proposes the next message in a team thread.
func (s *Service) DraftReply(ctx context.Context, threadTitle string, msgs []model.Message, senderNames map[string]string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "assist: rate limit wait")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thread: %s\n\n", threadTitle)
	for _, m := range msgs {
		name := senderNames[m.SenderID]
		if name == "" {
			name = m.SenderID
		}
		fmt.Fprintf(&b, "%s: %s\n", name, m.Text)
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    "You draft the next reply in an internal real estate team chat. Match the tone of the conversation, keep it short and actionable, and respond with the message text only.",
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "assist: draft reply")
	}
	resp.Usage.LogCost(s.model, "draft_reply")
	return strings.TrimSpace(resp.Text()), nil
}

// cleanJSON extracts a JSON value from text that may contain markdown
// code fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	// Find the outermost JSON value: object or array, whichever opens first.
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return text[arrStart : end+1]
		}
	case objStart >= 0:
		if end := strings.LastIndex(text, "}"); end > objStart {
			return text[objStart : end+1]
		}
	}
	return text
}
