// package chat is the rule-based assistant behind the Messages page.
//
// [Parse] turns free text into a [Message]: an [Intent] picked from keyword
// lists, the artists, genres and locations it mentions, and a [Sentiment].
// [Reply] answers a parsed message from canned templates, and [Bot] keeps a
// short per-user [Conversation] so an unclear follow-up can refer back to the
// last topic.
//
// Matching is on whole words and phrases of the lowercased text, so "hi" does
// not fire inside "this" and "r&b" survives tokenizing.
package chat
