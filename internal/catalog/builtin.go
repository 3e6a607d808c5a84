package catalog

import "github.com/felixgeelhaar/trainer/internal/domain"

// DefaultEntries returns the built-in exercise catalog
func DefaultEntries() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		// g1
		{ID: 1, Level: domain.LevelG1, Folder: "AgeFinder", Title: "Age Finder", Description: "Calculate age from date with error handling"},
		{ID: 2, Level: domain.LevelG1, Folder: "DayOfWeek", Title: "Day of Week Finder", Description: "Find the day of the week for a given date"},
		{ID: 3, Level: domain.LevelG1, Folder: "MonthlyPeriod", Title: "Monthly Period", Description: "Calculate monthly period between dates"},
		{ID: 4, Level: domain.LevelG1, Folder: "MultiplicationTable", Title: "Multiplication Table", Description: "Generate multiplication tables"},
		{ID: 5, Level: domain.LevelG1, Folder: "TimeTracker", Title: "Time Tracker", Description: "Track project time between dates"},
		{ID: 6, Level: domain.LevelG1, Folder: "TodoList", Title: "Todo List", Description: "Manage tasks with status tracking"},

		// g2
		{ID: 7, Level: domain.LevelG2, Folder: "AlmostPalindrome", Title: "Almost Palindrome", Description: "Check if string is almost a palindrome"},
		{ID: 8, Level: domain.LevelG2, Folder: "BreakdownURL", Title: "Breakdown URL", Description: "Parse URL components using Java URL class"},
		{ID: 9, Level: domain.LevelG2, Folder: "ConfigProtector", Title: "Config Protector", Description: "Protect configuration data"},
		{ID: 10, Level: domain.LevelG2, Folder: "FactorialMaster", Title: "Factorial Master", Description: "Calculate factorial numbers"},
		{ID: 11, Level: domain.LevelG2, Folder: "Flexisort", Title: "Flexible Sorting", Description: "Multiple sorting algorithms implementation"},
		{ID: 12, Level: domain.LevelG2, Folder: "HTMLValidator", Title: "HTML Validator", Description: "Validate HTML tag structure"},
		{ID: 13, Level: domain.LevelG2, Folder: "NextPrime", Title: "Next Prime", Description: "Find the next prime number"},

		// g3
		{ID: 14, Level: domain.LevelG3, Folder: "BuilderBlueprint", Title: "Builder Pattern", Description: "Implement builder design pattern"},
		{ID: 15, Level: domain.LevelG3, Folder: "CircularLinkedList", Title: "Circular Linked List", Description: "Implement circular linked list structure"},
		{ID: 16, Level: domain.LevelG3, Folder: "DoubleLinkedList", Title: "Double Linked List", Description: "Implement doubly linked list structure"},
		{ID: 17, Level: domain.LevelG3, Folder: "FactoryBlueprint", Title: "Factory Pattern", Description: "Implement factory design pattern"},
		{ID: 18, Level: domain.LevelG3, Folder: "SingleLinkedList", Title: "Single Linked List", Description: "Implement singly linked list structure"},
		{ID: 19, Level: domain.LevelG3, Folder: "SingletonBlueprint", Title: "Singleton Pattern", Description: "Implement singleton design pattern"},

		// g4
		{ID: 20, Level: domain.LevelG4, Folder: "DistinctSubstringLength", Title: "Distinct Substring Length", Description: "Find distinct substring length"},
		{ID: 21, Level: domain.LevelG4, Folder: "FirstUnique", Title: "First Unique", Description: "Find first unique character in string"},
		{ID: 22, Level: domain.LevelG4, Folder: "HarmoniousFusion", Title: "Harmonious Fusion", Description: "Merge and harmonize data structures"},
		{ID: 23, Level: domain.LevelG4, Folder: "IsAnagram", Title: "Anagram Checker", Description: "Check if two strings are anagrams"},
		{ID: 24, Level: domain.LevelG4, Folder: "LongestCommonPrefix", Title: "Longest Common Prefix", Description: "Find longest common prefix in strings"},
		{ID: 25, Level: domain.LevelG4, Folder: "TopFrequents", Title: "Top Frequents", Description: "Find most frequent elements"},
	}
}
