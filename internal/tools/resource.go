package tools

import "fmt"

// EndpointInfo is one row of the endpoint matrix resource.
type EndpointInfo struct {
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
}

// EndpointMatrix maps the upstream DeepSeek endpoints to the tools that
// consume them. Served as the deepseek://api/endpoints resource.
var EndpointMatrix = []EndpointInfo{
	{
		Endpoint:    "/chat/completions",
		Method:      "POST",
		Tool:        "chat_completion",
		Description: "Chat Completions API (streaming and non-streaming)",
	},
	{
		Endpoint:    "/completions",
		Method:      "POST",
		Tool:        "completion",
		Description: "Text/FIM Completions API (streaming and non-streaming)",
	},
	{
		Endpoint:    "/models",
		Method:      "GET",
		Tool:        "list_models",
		Description: "List available DeepSeek models",
	},
	{
		Endpoint:    "/user/balance",
		Method:      "GET",
		Tool:        "get_user_balance",
		Description: "Retrieve account balance",
	},
}

// ChatStarterPrompt renders the deepseek_chat_starter prompt template.
func ChatStarterPrompt(task, style, model string) string {
	if style == "" {
		style = "helpful"
	}
	return fmt.Sprintf("Use model: %s\nStyle: %s\nTask: %s", model, style, task)
}
