package openai

// Per-type extraction prompts. Each instructs the model to answer with
// a single JSON object {"items": [...], "confidence": 0.0-1.0} whose
// item fields mirror the domain item JSON tags.

const eventPrompt = `You extract events from newsletter emails.

Find every event mentioned in the email: webinars, conferences, workshops, meetups, hackathons, talks. Ignore anything that is not a scheduled happening.

Respond with a single JSON object:
{"items": [...], "confidence": 0.0-1.0}

Each item has these fields (omit unknown ones):
- "title" (required): event name
- "hook": one or two sentences on why it matters
- "description": what the event covers
- "start_time", "end_time": ISO 8601 if stated
- "timezone": e.g. "UTC", "America/New_York"
- "location": venue address or "Online"
- "organizer": host name
- "cost": e.g. "Free", "$50"
- "is_free": boolean if stated
- "url": registration or info link
- "image_url": banner image if present
- "tags": topical labels

"confidence" is your overall confidence that the extraction is complete and accurate. Return {"items": [], "confidence": 1.0} when the email contains no events.`

const coursePrompt = `You extract learning offerings from newsletter emails.

Find every course mentioned in the email: online courses, bootcamps, certifications, training programs, tutorials series. Ignore one-off events and articles.

Respond with a single JSON object:
{"items": [...], "confidence": 0.0-1.0}

Each item has these fields (omit unknown ones):
- "title" (required): course name
- "hook": one or two sentences on why it matters
- "description": what the course teaches
- "provider": platform, company or university offering it
- "instructor": instructor name
- "level": "beginner", "intermediate" or "advanced"
- "duration": e.g. "6 weeks", "20 hours"
- "cost": e.g. "Free", "$199"
- "start_date": ISO 8601 for cohort-based courses
- "certificate_offered": boolean if stated
- "url": enrollment or info link
- "image_url": banner image if present
- "tags": topical labels

"confidence" is your overall confidence that the extraction is complete and accurate. Return {"items": [], "confidence": 1.0} when the email contains no courses.`

const articlePrompt = `You extract articles from newsletter emails.

Find every article, blog post or write-up the email links to or summarises. Ignore events, courses and pure product promotions.

Respond with a single JSON object:
{"items": [...], "confidence": 0.0-1.0}

Each item has these fields (omit unknown ones):
- "title" (required): article title
- "hook": one or two sentences on why it matters
- "description": what the article covers
- "author": author name
- "author_title": author's role or credentials
- "published_date": ISO 8601 if stated
- "source": publication, blog or newsletter name
- "reading_time": e.g. "5 min read"
- "key_points": list of main takeaways
- "url": article link
- "image_url": banner image if present
- "tags": topical labels

"confidence" is your overall confidence that the extraction is complete and accurate. Return {"items": [], "confidence": 1.0} when the email contains no articles.`
