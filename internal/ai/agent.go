// Package ai is the admin assistant: a Gemini chat with function calling
// over the catalog and both ledgers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eterno-store/internal/auth"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrDisabled = errors.New("assistant is not configured")

const maxToolRounds = 5

type Agent struct {
	apiKey string
	model  string
	tools  *Toolbox
	now    func() time.Time
}

func NewAgent(apiKey string, tools *Toolbox) *Agent {
	return &Agent{apiKey: apiKey, model: "gemini-2.0-flash-001", tools: tools, now: time.Now}
}

func (a *Agent) Enabled() bool { return a != nil && a.apiKey != "" }

func declarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolCheckInventory,
				Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Category or Stock.",
			},
			{
				Name:        ToolUpdatePrice,
				Description: "Update the price of a specific product using its ID",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
						"new_price":  {Type: genai.TypeNumber, Description: "New price in pesos"},
					},
					Required: []string{"product_id", "new_price"},
				},
			},
			{
				Name:        ToolCreateProduct,
				Description: "Add a new product to the catalog",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString, Description: "Name of the product"},
						"price":    {Type: genai.TypeNumber, Description: "Price in pesos"},
						"category": {Type: genai.TypeString, Description: "Category (Shirts, Pants, Accessories, ...)"},
						"stock":    {Type: genai.TypeInteger, Description: "Initial stock count"},
					},
					Required: []string{"name", "price", "stock"},
				},
			},
			{
				Name:        ToolRevenueReport,
				Description: "Get revenue from POS sales and online orders for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
			{
				Name:        ToolRecentTransactions,
				Description: "List the most recent POS sales and online orders, newest first.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"limit": {Type: genai.TypeInteger, Description: "How many transactions (max 50)"},
					},
				},
			},
		},
	}}
}

func (a *Agent) prompt(message string) string {
	today := a.now().In(a.tools.loc).Format("2006-01-02")
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the ETERNO store assistant for an admin.

RULES:
1. UPDATE: If the user asks to update a product by NAME, do NOT ask for the ID.
   Call 'check_inventory' to find the ID, then call 'update_product_price'.
2. READ: For price, stock or details of a product call 'check_inventory' and answer from it.
3. SALES: For revenue questions use 'get_revenue_report'. For recent activity use 'get_recent_transactions'.
4. Amounts are Philippine pesos.

USER: %s`, today, message)
}

// Ask answers one admin message, running tool calls until the model replies
// with text.
func (a *Agent) Ask(ctx context.Context, p auth.Principal, message string) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	if err := p.RequireAdmin(); err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = declarations()
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(message)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := a.tools.Execute(ctx, p, call.Name, call.Args)
			if err != nil {
				result = map[string]any{"error": err.Error()}
			}
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		resp, err = session.SendMessage(ctx, parts...)
		if err != nil {
			return "", err
		}
	}
	return replyText(resp), nil
}

func candidateParts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range candidateParts(resp) {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	for _, part := range candidateParts(resp) {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
