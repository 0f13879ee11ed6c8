package bridge

import (
	"strings"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
)

// AssemblePrompt flattens prompt content blocks into the single text argument
// passed to kiro-cli. Blocks are concatenated without separators: text
// contributes its text, a resource link its URI, an embedded resource its
// text (or URI when it has none), and media blocks their URI or a
// placeholder.
func AssemblePrompt(blocks []acp.ContentBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case acp.ContentTypeText:
			sb.WriteString(block.Text)
		case acp.ContentTypeResourceLink:
			sb.WriteString(block.URI)
		case acp.ContentTypeResource:
			if block.Resource == nil {
				continue
			}
			if block.Resource.Text != "" {
				sb.WriteString(block.Resource.Text)
			} else {
				sb.WriteString(block.Resource.URI)
			}
		case acp.ContentTypeImage, acp.ContentTypeAudio:
			if block.URI != "" {
				sb.WriteString(block.URI)
			} else {
				sb.WriteString("[" + block.Type + " omitted]")
			}
		default:
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
