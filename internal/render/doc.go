// Package render turns .doc/.docx files into HTML by driving an external
// office suite.
//
// Two backends exist: LibreOffice in headless batch mode, available on every
// platform, and Microsoft Word automated through PowerShell COM on Windows.
// Select and Detect pick one by probing; every Render call starts and tears
// down its own converter process, so renderers are safe for concurrent use.
package render
