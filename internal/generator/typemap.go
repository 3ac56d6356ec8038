package generator

import (
	"sort"
	"strings"

	"github.com/quizforge/quizforge/internal/domain"
)

// topicChallengeTypes maps normalized topic keys to the challenge types
// that suit them best, highest priority first.
var topicChallengeTypes = map[string][]domain.ChallengeType{
	"python basics": {domain.ChallengeMultipleChoice},
	"basics":        {domain.ChallengeMultipleChoice},
	"introduction":  {domain.ChallengeMultipleChoice},
	"overview":      {domain.ChallengeMultipleChoice},
	"syntax":        {domain.ChallengeMultipleChoice, domain.ChallengeFillInBlank},

	"data structures": {domain.ChallengeCoding},
	"lists":           {domain.ChallengeCoding},
	"dictionaries":    {domain.ChallengeCoding},
	"arrays":          {domain.ChallengeCoding},
	"sets":            {domain.ChallengeCoding},
	"tuples":          {domain.ChallengeCoding},
	"stacks":          {domain.ChallengeCoding},
	"queues":          {domain.ChallengeCoding},
	"linked lists":    {domain.ChallengeCoding},
	"trees":           {domain.ChallengeCoding},
	"graphs":          {domain.ChallengeCoding},

	"algorithms":          {domain.ChallengeCoding},
	"sorting":             {domain.ChallengeCoding},
	"searching":           {domain.ChallengeCoding},
	"recursion":           {domain.ChallengeCoding},
	"dynamic programming": {domain.ChallengeCoding},
	"greedy":              {domain.ChallengeCoding},

	"functions":  {domain.ChallengeCoding},
	"methods":    {domain.ChallengeCoding},
	"parameters": {domain.ChallengeMultipleChoice},
	"arguments":  {domain.ChallengeMultipleChoice},

	"modules":   {domain.ChallengeMultipleChoice},
	"packages":  {domain.ChallengeMultipleChoice},
	"libraries": {domain.ChallengeMultipleChoice},
	"imports":   {domain.ChallengeMultipleChoice},

	"error handling":  {domain.ChallengeDebugging},
	"exceptions":      {domain.ChallengeDebugging},
	"try except":      {domain.ChallengeDebugging},
	"debugging":       {domain.ChallengeDebugging},
	"errors":          {domain.ChallengeDebugging},
	"bugs":            {domain.ChallengeDebugging},
	"troubleshooting": {domain.ChallengeDebugging},

	"classes":       {domain.ChallengeCoding},
	"objects":       {domain.ChallengeCoding},
	"oop":           {domain.ChallengeCoding},
	"inheritance":   {domain.ChallengeCoding},
	"polymorphism":  {domain.ChallengeCoding},
	"encapsulation": {domain.ChallengeCoding},

	"file handling":   {domain.ChallengeDebugging},
	"file operations": {domain.ChallengeDebugging},
	"io":              {domain.ChallengeDebugging},
	"input output":    {domain.ChallengeDebugging},

	"regular expressions": {domain.ChallengeDebugging},
	"regex":               {domain.ChallengeDebugging},
	"pattern matching":    {domain.ChallengeDebugging},

	"web development": {domain.ChallengeCoding},
	"web":             {domain.ChallengeCoding},
	"html":            {domain.ChallengeCoding},
	"css":             {domain.ChallengeCoding},
	"javascript":      {domain.ChallengeCoding},
	"frontend":        {domain.ChallengeCoding},

	"database":     {domain.ChallengeCoding},
	"sql":          {domain.ChallengeCoding},
	"nosql":        {domain.ChallengeCoding},
	"data storage": {domain.ChallengeCoding},

	"api":       {domain.ChallengeCoding},
	"rest":      {domain.ChallengeCoding},
	"graphql":   {domain.ChallengeCoding},
	"endpoints": {domain.ChallengeCoding},

	"testing":           {domain.ChallengeDebugging},
	"unit tests":        {domain.ChallengeDebugging},
	"integration tests": {domain.ChallengeDebugging},
	"test cases":        {domain.ChallengeDebugging},

	"object-oriented programming": {domain.ChallengeCoding},
	"functional programming":      {domain.ChallengeDebugging},
	"concurrent programming":      {domain.ChallengeCoding},

	"variables": {domain.ChallengeFillInBlank, domain.ChallengeMultipleChoice},
	"loops":     {domain.ChallengeFillInBlank, domain.ChallengeCoding},
}

// defaultChallengeTypes covers every challenge type for topics with no
// table match, highest priority first.
var defaultChallengeTypes = []domain.ChallengeType{
	domain.ChallengeMultipleChoice,
	domain.ChallengeCoding,
	domain.ChallengeDebugging,
	domain.ChallengeFillInBlank,
}

// TypesForTopic determines the most appropriate challenge types for a
// topic: exact match, then longest key contained in the topic, then any
// shared word, then the default ordering.
func TypesForTopic(topic string) []domain.ChallengeType {
	normalized := strings.ToLower(strings.TrimSpace(topic))

	if types, ok := topicChallengeTypes[normalized]; ok {
		return types
	}

	// Longest key that appears inside the topic wins. Ties break on
	// key order so the result does not depend on map iteration.
	var best []domain.ChallengeType
	bestKey := ""
	for key, types := range topicChallengeTypes {
		if !strings.Contains(normalized, key) {
			continue
		}
		if len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			best = types
			bestKey = key
		}
	}
	if best != nil {
		return best
	}

	// Word-level overlap. Keys are scanned in sorted order so the
	// result does not depend on map iteration.
	topicWords := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		topicWords[w] = true
	}
	keys := make([]string, 0, len(topicChallengeTypes))
	for key := range topicChallengeTypes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, w := range strings.Fields(key) {
			if topicWords[w] {
				return topicChallengeTypes[key]
			}
		}
	}

	return defaultChallengeTypes
}
