package api

// InvokeResponse wraps a successful command result.
type InvokeResponse struct {
	Result any `json:"result"`
}

// CommandsResponse lists the commands the back end accepts.
type CommandsResponse struct {
	Commands []string `json:"commands" example:"greet,save_markdown_file" validate:"required"`
}
