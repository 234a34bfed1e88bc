package main

const manualString = `enforcer is a utility to help you keep your source code in a more consistent
state. It checks all matching files in a directory and reports any
inconsistencies. Some of them can be fixed automatically (like converting tabs
to spaces), others need manual attention (like lines that are too long).


CHECKS

  HAS_TABS                tab characters (disable with -t)
  TRAILING_SPACES         spaces or tabs at the end of a line
  HAS_ILLEGAL_CHARACTERS  non-ASCII characters or invalid UTF-8
  LINE_TOO_LONG           lines wider than -l columns (tabs expanded)
  WINDOWS_LINE_ENDINGS    CRLF line endings (enable with --crlf)
  MISSING_FINAL_NEWLINE   no newline at end of file (enable with --final-newline)

With -c, tabs, trailing whitespace, CRLF line endings and missing final
newlines are fixed in place. Files that are not valid UTF-8 are never
rewritten.


CONFIGURATION

enforcer reads .enforcer (TOML) or .enforcer.yaml from the searched directory,
or the file given with -f. Command-line flags override file settings.

  ignore = [".git", ".bake", ".repo"]   # directory and file name globs
  endings = [".c", ".cpp", ".h"]        # file name suffixes to check
  globs = ["src/**.inc"]                # path globs to check
  tab_width = 4
  line_length = 0                       # 0 disables the check
  tabs = false                          # true leaves tabs alone
  crlf = false
  final_newline = false

Use -s to print the configuration in effect.


EXIT STATUS

  0  no problems left
  1  problems found that were not fixed
  2  bad usage, configuration or I/O error
`
