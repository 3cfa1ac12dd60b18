package store

import (
	"time"

	"stackecho/domain/core/entities"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedUsers returns the built-in demo members.
func SeedUsers() []entities.User {
	return []entities.User{
		{
			ID:         "1",
			Username:   "john_doe",
			Email:      "john@example.com",
			Avatar:     entities.DefaultAvatar,
			Reputation: 1250,
			JoinDate:   day(2023, time.January, 15),
			Badges:     []string{"Contributor", "Helper"},
		},
		{
			ID:         "2",
			Username:   "alice_dev",
			Email:      "alice@example.com",
			Avatar:     entities.DefaultAvatar,
			Reputation: 2847,
			JoinDate:   day(2022, time.August, 20),
			Badges:     []string{"Expert", "Top Contributor", "Mentor"},
		},
		{
			ID:         "3",
			Username:   "bob_coder",
			Email:      "bob@example.com",
			Avatar:     entities.DefaultAvatar,
			Reputation: 1923,
			JoinDate:   day(2023, time.March, 10),
			Badges:     []string{"Problem Solver", "Helper"},
		},
	}
}

const authQuestionBody = `I'm trying to implement authentication in my Next.js 14 application using the app router. I've looked at several approaches but I'm not sure which one is the best practice.

Here's what I've tried so far:

~~~javascript
// app/api/auth/route.js
export async function POST(request) {
  const { email, password } = await request.json()
  // Authentication logic here
}
~~~

I'm specifically looking for:
1. Best practices for session management
2. How to protect routes in the app router
3. Integration with external auth providers

Any help would be appreciated!`

const authAnswerBody = `For Next.js 14 with the app router, I recommend using NextAuth.js (now Auth.js). Here's a complete setup:

First, install the required packages:
~~~bash
npm install next-auth
~~~

Then create your auth configuration:
~~~javascript
// app/api/auth/[...nextauth]/route.js
import NextAuth from 'next-auth'
import GoogleProvider from 'next-auth/providers/google'

const handler = NextAuth({
  providers: [
    GoogleProvider({
      clientId: process.env.GOOGLE_CLIENT_ID,
      clientSecret: process.env.GOOGLE_CLIENT_SECRET,
    })
  ],
})

export { handler as GET, handler as POST }
~~~

This approach handles session management automatically and integrates well with the app router.`

const useStateQuestionBody = `I'm having trouble with useState not updating the state immediately after calling the setter function. Here's my code:

~~~javascript
const [count, setCount] = useState(0);

const handleClick = () => {
  setCount(count + 1);
  console.log(count); // This still shows the old value
};
~~~

Why is this happening and how can I fix it?`

const useStateAnswerBody = `This is expected behavior in React. State updates are asynchronous and batched for performance reasons.

Here are a few solutions:

1. **Use useEffect to watch for state changes:**
~~~javascript
useEffect(() => {
  console.log(count);
}, [count]);
~~~

2. **Use the functional update pattern:**
~~~javascript
setCount(prevCount => prevCount + 1);
~~~

3. **Store the new value in a variable** before calling the setter and log that instead.`

const typescriptQuestionBody = `What are the recommended best practices when using TypeScript in a Node.js backend application? I'm particularly interested in:

- Project structure
- Configuration setup
- Type definitions for external libraries
- Error handling patterns
- Testing strategies

Any comprehensive guide or examples would be helpful!`

// SeedQuestions returns the built-in question set used when no snapshot
// can be restored. Each call returns fresh copies.
func SeedQuestions() []entities.Question {
	users := SeedUsers()
	john, alice, bob := users[0], users[1], users[2]

	return []entities.Question{
		{
			ID:        "1",
			Title:     "How to implement authentication in Next.js 14?",
			Content:   authQuestionBody,
			Author:    john,
			Votes:     15,
			Views:     127,
			Tags:      []string{"nextjs", "authentication", "react", "app-router"},
			CreatedAt: mustTime("2024-01-15T10:30:00Z"),
			UpdatedAt: mustTime("2024-01-15T10:30:00Z"),
			Answers: []entities.Answer{
				{
					ID:         "a1",
					Content:    authAnswerBody,
					Author:     alice.Clone(),
					Votes:      23,
					CreatedAt:  mustTime("2024-01-15T11:15:00Z"),
					IsAccepted: true,
				},
			},
		},
		{
			ID:        "2",
			Title:     "React useState not updating immediately",
			Content:   useStateQuestionBody,
			Author:    bob,
			Votes:     8,
			Views:     89,
			Tags:      []string{"react", "hooks", "state", "javascript"},
			CreatedAt: mustTime("2024-01-15T08:20:00Z"),
			UpdatedAt: mustTime("2024-01-15T08:20:00Z"),
			Answers: []entities.Answer{
				{
					ID:        "a2",
					Content:   useStateAnswerBody,
					Author:    alice.Clone(),
					Votes:     12,
					CreatedAt: mustTime("2024-01-15T09:45:00Z"),
				},
			},
		},
		{
			ID:        "3",
			Title:     "Best practices for TypeScript with Node.js",
			Content:   typescriptQuestionBody,
			Author:    john.Clone(),
			Votes:     23,
			Views:     234,
			Tags:      []string{"typescript", "nodejs", "backend", "best-practices"},
			CreatedAt: mustTime("2024-01-14T15:30:00Z"),
			UpdatedAt: mustTime("2024-01-14T15:30:00Z"),
			Answers:   []entities.Answer{},
		},
	}
}
