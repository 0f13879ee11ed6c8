// Package kiro runs the kiro-cli binary on behalf of the ACP bridge.
//
// A Client wraps the one-shot invocations (`whoami`, `agent list`,
// `settings`) and starts `chat` turns whose stdout the transcript package
// translates. HostSettings reads the default agent from kiro-cli's own
// settings file.
//
// # Usage
//
//	client := kiro.NewClient(kiro.WithCLIPath("/usr/local/bin/kiro-cli"))
//	if err := client.Check(ctx); err != nil {
//		fmt.Println(kiro.Advice(err))
//	}
//	proc, err := client.StartChat(ctx, kiro.ChatRequest{Prompt: "hi", Wrap: kiro.WrapNever})
package kiro
