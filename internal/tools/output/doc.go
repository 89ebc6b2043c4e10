// Package output scrubs everything an MCP tool returns to the agent.
//
// Text leaving the server passes through a three-stage [Sanitizer]:
//
//  1. Pattern redaction replaces credential-shaped substrings (password=,
//     token=, api-key=, bearer tokens and JWTs) with a labelled marker such as
//     "[REDACTED: token]".
//  2. Entropy redaction replaces base64-alphabet runs of at least 20
//     characters whose Shannon entropy exceeds 4.0 bits per character with
//     "[REDACTED: high-entropy]".
//  3. Truncation keeps the first 500 lines and appends "[Output truncated]".
//
// The stages always run in that order. Sanitize never fails and is
// deterministic: identical input yields byte-identical output.
//
// Objects returned by the cluster are pruned structurally before they are
// serialized. [PruneObject] drops noisy metadata (managedFields,
// resourceVersion, uid, selfLink, generation, creationTimestamp and the
// last-applied-configuration annotation) and blanks Secret values key by key.
//
// # Usage
//
//	s := output.NewSanitizer(output.DefaultConfig())
//	pruned := output.PruneObject(obj.Object)
//	data, _ := json.MarshalIndent(pruned, "", "  ")
//	text, report := s.SanitizeWithReport("k8s_get", string(data))
package output
