// Package demo provides a deterministic offline substitute for the live
// language-model collaborator.
//
// Classification from free text to a closed topic set is a pure function,
// kept separate from the response templates so the live collaborator can be
// swapped in without touching session control flow.
package demo

import (
	"context"
	"strings"
)

// Topic is one of the closed set of topic tags a prompt can classify to.
type Topic string

const (
	TopicArrays   Topic = "arrays"
	TopicDynamic  Topic = "dynamic_programming"
	TopicDesign   Topic = "system_design"
	TopicBehavior Topic = "behavioral"
	TopicCoding   Topic = "coding"
	TopicGeneral  Topic = "general"
)

// keywordRules maps lowercase substrings to topics, checked in order.
// First match wins; unmatched text classifies as TopicGeneral.
var keywordRules = []struct {
	substr string
	topic  Topic
}{
	{"hash map", TopicArrays},
	{"two sum", TopicArrays},
	{"array", TopicArrays},
	{"palindrome", TopicDynamic},
	{"dynamic programming", TopicDynamic},
	{"system design", TopicDesign},
	{"url", TopicDesign},
	{"design", TopicDesign},
	{"behavioral", TopicBehavior},
	{"leadership", TopicBehavior},
	{"customer", TopicBehavior},
	{"ownership", TopicBehavior},
	{"coding", TopicCoding},
	{"dsa", TopicCoding},
}

// Classify maps free text to a topic tag. Pure; no state.
func Classify(text string) Topic {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		if strings.Contains(lower, rule.substr) {
			return rule.topic
		}
	}
	return TopicGeneral
}

// Client serves canned responses in place of a live model.
type Client struct{}

// NewClient creates the offline collaborator.
func NewClient() *Client {
	return &Client{}
}

// Respond returns the canned response for the classified topic and persona.
// Never fails; the context string is accepted for interface parity and unused.
func (c *Client) Respond(ctx context.Context, prompt, contextStr string, interviewer bool) (string, error) {
	topic := Classify(prompt)
	if interviewer {
		if resp, ok := interviewerResponses[topic]; ok {
			return resp, nil
		}
		return interviewerDefault, nil
	}
	if resp, ok := coachResponses[topic]; ok {
		return resp, nil
	}
	return coachDefault, nil
}

var interviewerResponses = map[Topic]string{
	TopicArrays: `Great, I can see you understand the hash map approach. Let me dive deeper into your solution:

1. Edge case: what happens if there are duplicate numbers in the array? Walk me through your logic.
2. Optimization: you mentioned O(n) time complexity. If the array was sorted, could we optimize further? What would be the trade-offs?
3. Space complexity: can you think of a way to solve this without the extra hash map?
4. Scale: how would your solution perform with an array of 10 million integers?

Also, you mentioned returning indices. If the problem asked for the actual values instead, would that change your approach?`,

	TopicDynamic: `Interesting approach. Let me challenge your solution a bit:

1. Algorithm choice: you mentioned expand around centers. Why that over dynamic programming? What are the trade-offs?
2. Space optimization: could you optimize further for very long strings?
3. Edge cases: how does your solution handle empty strings, single characters, or strings with no palindromes?
4. Performance: what is the worst-case input for your algorithm?
5. Alternative: have you heard of Manacher's algorithm? How would it compare?

Can you walk me through the expand-around-centers approach step by step?`,

	TopicDesign: `Good start on the architecture. I'd like to explore some specific areas deeper:

1. Database design: would you choose SQL or NoSQL? Walk me through your table schema.
2. Encoding: what happens when you get hash collisions? How would you handle that at scale?
3. Caching strategy: where would you implement caching in your system? What would you cache and why?
4. Scale: if we need to handle 100 million operations per day, how would your design change?
5. Analytics: how would you track usage metrics if one item goes viral and gets millions of hits in an hour?

Can you also walk me through the entire flow of a single user request?`,

	TopicBehavior: `Thank you for sharing that example. I can see you demonstrated strong ownership.

Let me ask some follow-up questions to understand the depth of your experience:

1. Impact measurement: how did you quantify the success of your decision? What metrics did you track?
2. Stakeholder management: how specifically did you handle the resistance you mentioned?
3. Learning: looking back, what would you do differently?
4. Long-term: how has this experience influenced your decision-making since?

I'm particularly interested in the specific actions YOU took versus what your team did.`,
}

const interviewerDefault = `That's a solid response. Let me probe deeper into your thinking process:

1. Alternative approaches: what other solutions did you consider, and why did you choose this one?
2. Trade-offs: every solution has downsides. What are the downsides of yours?
3. Edge cases: walk me through some edge cases and how your solution handles them.
4. Optimization: if you had to run this in production at scale, what would you change?
5. Testing: what test cases would you write for this solution?

I'm also curious — what questions do you have for me about this problem?`

var coachResponses = map[Topic]string{
	TopicDesign: `System design interview framework (45-60 minutes):

1. Requirements clarification (5-10 min): ask about scale, daily active users, queries per second, data volume; pin down functional and non-functional requirements.
2. High-level design (10-15 min): draw the major components, show the data flow, sketch the API.
3. Deep dive (20-25 min): database schema and choice, detailed component design, key algorithms.
4. Scale and optimize (10-15 min): identify bottlenecks, caching strategies, load balancing, monitoring.

Tips: start simple and then scale, discuss trade-offs for every decision, think about failure scenarios, and consider the operational side.`,

	TopicBehavior: `Structure behavioral answers with the STAR method:

- Situation (20%): context and background.
- Task (20%): your specific responsibility.
- Action (40%): what YOU did — the most critical part.
- Result (20%): quantifiable outcomes and what you learned.

Prepare two or three detailed stories per leadership principle, practice with concrete metrics, and expect deep follow-up questions. Show growth and learning from every example.`,

	TopicCoding: `Coding interview strategy:

1. Problem understanding (5 min): ask clarifying questions, confirm input/output format, discuss constraints.
2. Approach discussion (10 min): explain your approach before coding, state time and space complexity, consider alternatives.
3. Coding (20 min): write clean, readable code and think out loud.
4. Testing and optimization (10 min): trace examples, hunt for bugs, optimize if needed.

Common patterns to drill: two pointers and sliding window, tree and graph traversal, dynamic programming, and object-oriented design questions.`,
}

const coachDefault = `Demo mode is active, so this is a canned coaching response.

I can help you practice live interview simulation with follow-up questions, system design frameworks, coding strategies, and behavioral preparation with the STAR method.

Configure an API key to get dynamic, personalized feedback, or keep practicing in demo mode — the question banks and session tracking work the same either way.`
