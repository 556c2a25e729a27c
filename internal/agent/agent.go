package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/rmoliv/powerfit/internal/config"
)

const systemPrompt = `You are an IBM Power server sizing assistant. Your only job is to help
users compute hardware consolidation scenarios.

Follow these rules strictly:
1. For greetings and small talk, answer politely, introduce yourself
   briefly, and explain step by step how the sizing works. Do not call
   tools for that.
2. Your goal is to collect everything the size_servers tool needs: a
   list of current servers (model, count, active cores, utilization)
   and optionally a growth projection (annual rate in percent and years).
3. Guide the user step by step and ask for one piece of information at
   a time.
4. Never call size_servers before the inventory has at least one
   server. If asked to compute without data, explain what you still
   need first.
5. Politely decline questions that are not about IBM Power server
   sizing.
6. Never invent server models, rPerf figures, or any other data.`

// Agent runs a chat loop between the user and the Anthropic API, letting
// the model call the sizing tool when the inventory is complete.
type Agent struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	tool      *Tool
	in        io.Reader
	out       io.Writer
}

// New creates an agent talking to the Anthropic API with the given key.
func New(cfg config.AgentConfig, apiKey string, tool *Tool, in io.Reader, out io.Writer) *Agent {
	return &Agent{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
		tool:      tool,
		in:        in,
		out:       out,
	}
}

// Run reads user turns until EOF or an exit command.
func (a *Agent) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "PowerFit sizing assistant. Type \"exit\" to leave.")

	scanner := bufio.NewScanner(a.in)
	var history []anthropic.MessageParam
	for {
		fmt.Fprint(a.out, "\nyou> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}

		history = append(history, anthropic.NewUserMessage(anthropic.NewTextBlock(input)))
		updated, err := a.converse(ctx, history)
		if err != nil {
			return err
		}
		history = updated
	}
	return scanner.Err()
}

// converse sends the history to the model and keeps going while it asks
// for tool calls, printing text blocks as they arrive.
func (a *Agent) converse(ctx context.Context, history []anthropic.MessageParam) ([]anthropic.MessageParam, error) {
	for {
		message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     a.model,
			MaxTokens: a.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  history,
			Tools:     []anthropic.ToolUnionParam{a.tool.Definition()},
		})
		if err != nil {
			return history, fmt.Errorf("anthropic request: %w", err)
		}
		history = append(history, message.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range message.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				fmt.Fprintf(a.out, "\nagent> %s\n", variant.Text)
			case anthropic.ToolUseBlock:
				output, err := a.tool.Run(ctx, []byte(variant.JSON.Input.Raw()))
				if err != nil {
					results = append(results, anthropic.NewToolResultBlock(variant.ID, friendlyToolError(err), true))
					continue
				}
				results = append(results, anthropic.NewToolResultBlock(variant.ID, output, false))
			}
		}
		if len(results) == 0 {
			return history, nil
		}
		history = append(history, anthropic.NewUserMessage(results...))
	}
}

func friendlyToolError(err error) string {
	return fmt.Sprintf("The sizing calculation failed: %v. Check the server model names and try again.", err)
}
