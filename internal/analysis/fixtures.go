package analysis

// DemoResumeText and DemoJobDescription are the bundled sample pair used by
// demo mode and as reference inputs in tests.
const DemoResumeText = `Akash Mohanraj
Email: akash@example.com
Headline: Software Engineer focused on frontend systems and AI-assisted workflows
Summary: Built production React and Next.js applications, improved performance and developer experience, and collaborated with product teams to ship customer-facing features quickly.
Skills: JavaScript, TypeScript, React, Next.js, Node.js, Tailwind CSS, REST APIs, Testing
Experience:
- Built reusable UI components and reduced page load time by 28%
- Shipped analytics dashboard used by 20+ internal stakeholders
- Improved CI stability by fixing flaky tests and adding coverage
Education: B.E. in Computer Science`

const DemoJobDescription = `Software Engineer, Google
Responsibilities:
- Build scalable web experiences and internal tools
- Collaborate across product, design, and engineering teams
- Write high quality, maintainable code and tests
Preferred skills:
- Strong data structures and algorithms
- System design fundamentals
- Distributed systems and performance optimization
- Observability and reliability best practices`
