package ai

// Content generation prompts
const (
	ContentGenerationSystemPrompt = `You are an experienced social media copywriter.
Write ready-to-publish copy for the requested platform. Return only the copy itself,
without preambles, explanations or markdown code fences.`

	RedditUserPrompt = `You are a genuine Reddit user.

Write a natural discussion post (120-180 words) about:
"%s"

Rules:
- No hashtags
- No marketing language
- Insightful and conversational
- Ask 1 thoughtful question at the end`

	TwitterUserPrompt = `Write 2 tweets about:
"%s"

Rules:
- Under 280 characters each
- Professional and engaging
- Exactly 2 hashtags per tweet
- Max 1 emoji`

	YouTubeUserPrompt = `Create YouTube-ready content for:
"%s"

Include:
1. Compelling title
2. Description (120-180 words)
3. 4-6 relevant hashtags

Tone: Informative, professional`
)

// Topic expansion prompt (for custom keywords)
const (
	TopicExpansionSystemPrompt = `You are a trend analyst for a marketing team.

Your task is to expand keywords into specific, timely topic ideas that would make engaging social media content.`

	TopicExpansionUserPrompt = `Expand the following keyword/theme into %d specific topic ideas.

Keyword: %s

For each topic, consider:
- Current trends and news
- Common questions the audience asks
- Practical tips
- Discussion-worthy perspectives

Respond in JSON format:
{
  "topics": [
    {
      "title": "<specific topic title>",
      "description": "<1-2 sentence description>"
    }
  ]
}`
)
