package hockeydb

// Fixtures mirror the text HockeyDB produces when a player page is selected and
// copied: tab-delimited cells with a trailing space on each cell.

const stamkosPage = `Steven Stamkos
Center -- shoots R
Born Feb 7 1990 -- Markham, ONT
[34 yrs. ago]
Height 6.01 -- Weight 193 [185 cm/88 kg]
Drafted by Tampa Bay Lightning
- round 1 #1 overall 2008 NHL Entry Draft

 	Regular Season 	Playoffs
Season 	Team 	Lge 	GP 	G 	A 	Pts 	PIM 	+/- 	GP 	G 	A 	Pts 	PIM
2005-06 	Markham Waxers 	OPJHL 	7 	4 	6 	10 	2 	 	-- 	-- 	-- 	-- 	--
2006-07 	Sarnia Sting 	OHL 	63 	42 	50 	92 	56 	 	4 	3 	1 	4 	2
2008-09 	Tampa Bay Lightning 	NHL 	79 	23 	23 	46 	39 	-13 	-- 	-- 	-- 	-- 	--
2020-21 	Tampa Bay Lightning 🏆 	NHL 	57 	23 	24 	47 	14 	+11 	1 	1 	0 	1 	0
NHL Totals 	 	 	1082 	555 	582 	1137 	632 	 	92 	40 	42 	82 	40`

const fowlerPage = `Jacob Fowler
Goalie -- catches L
Born Nov 24 2004 -- Melbourne, FL
Height 6.02 -- Weight 205 [188 cm/93 kg]

 	RS Scoring 	RS Goalie Stats
Season 	Team 	Lge 	GP 	A 	PIM 	Min 	GA 	EN 	SO 	GAA 	W 	L 	T 	Svs 	Pct
2021-22 	Youngstown Phantoms 	USHL 	42 	1 	2 	2431 	101 	2 	2 	2.49 	28 	10 	3 	1022 	.910
2023-24 	Boston College 	NCAA 	39 	2 	0 	2327 	83 	0 	3 	2.14 	32 	6 	1 	103 	0.926
2024-25 	Boston College 	H-East 	35 	0 	0 	2082 	70 	0 	3 	2.02 	24 	7 	2 	958 	.932`
