package mcpserver

// Tool descriptions carry interpretation guidance for the calling model.

func describeAnalyzeCode() string {
	return `Reviews a single code buffer with heuristic rules for security, bugs, performance and style.

USE WHEN:
- Checking a snippet or unsaved buffer before committing it
- Asking whether code stores secrets insecurely or uses eval/innerHTML
- Getting a quick quality score for generated code

INTERPRETING RESULTS:
- Issues are ordered security, bug, performance, style, then maintainability
- line is null for findings about the whole buffer
- critical and high findings should block a merge; medium deserves a look
- score starts at 10 and drops 1 per high/critical and 0.5 per medium/low finding

METRICS RETURNED:
- issues: description, severity, category, line
- summary: total, by_severity, by_category, lines, flagged_lines, score`
}

func describeAnalyzeFiles() string {
	return `Reviews source files and directories, detecting each file's language from its extension.

USE WHEN:
- Reviewing a change set or a whole package
- Finding the files with the most findings
- Producing a CI-style pass/fail summary

INTERPRETING RESULTS:
- Only files with findings matter; clean files carry empty issue lists
- errors lists files that were skipped (binary, unreadable or too large)
- mean_issues and stddev_issues show whether findings are spread out or concentrated

METRICS RETURNED:
- files: per-file issues and summary
- summary: merged counts and line-weighted score
- stats: files, files_with_issues, mean_issues, stddev_issues, median_issues, mean_score`
}

func describeDetectLanguage() string {
	return `Maps file paths or extensions to the language label the review rules use.

USE WHEN:
- Choosing the language argument for analyze_code
- Checking which files analyze_files will consider

INTERPRETING RESULTS:
- Unknown or missing extensions map to Swift
- supported is false when analyze_files would skip the path

METRICS RETURNED:
- languages: path, language, supported`
}
