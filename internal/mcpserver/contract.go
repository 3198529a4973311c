package mcpserver

// ReportFormat describes the Markdown report layout that save_markdown_file
// expects, and how it names the file when no filename is given.
const ReportFormat = `# Sticky Note Report Format

Reports are plain UTF-8 Markdown. Optional YAML frontmatter may precede the body.

## Structure

` + "```" + `markdown
---
title: Sprint retro board          # OPTIONAL – used as the suggested file name
---

# Sprint retro board

## Keep

- Pairing on reviews

## Try

- Shorter standups
` + "```" + `

## Naming

When ` + "`" + `save_markdown_file` + "`" + ` is called without a filename, the save dialog
suggests one, in order:

1. the frontmatter ` + "`" + `title` + "`" + `,
2. else the first level-one heading (` + "`" + `# ...` + "`" + `),
3. else ` + "`" + `report` + "`" + `.

Characters that are not allowed in file names are replaced with ` + "`" + `-` + "`" + ` and
` + "`" + `.md` + "`" + ` is appended.

## Writing

- The file is replaced atomically; readers never see a partial report.
- ` + "`" + `write_file_to_path` + "`" + ` never creates missing parent directories.
- Content is written byte for byte; no trailing newline is added.
`
